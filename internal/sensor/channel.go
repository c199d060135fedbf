// Package sensor converts raw ADC and digital-sensor readings into calibrated
// pressures (bar) and temperatures (°C), and keeps the chamber-pressure window
// used by the ramp-up gate.
package sensor

import "fmt"

// Channel identifies a logical measurement.
type Channel int

const (
	OxidizerInletPressure Channel = iota
	OxidizerInletTemperature
	EngineInletPressure
	EngineInletTemperature        // PT1000 on the ADC
	EngineInletTemperatureDigital // digital sensor behind the mux
	ChamberPressure
	ChamberTemperature
)

// Channels lists every channel in polling order.
var Channels = []Channel{
	EngineInletTemperatureDigital,
	EngineInletPressure,
	ChamberTemperature,
	ChamberPressure,
	OxidizerInletTemperature,
	EngineInletTemperature,
	OxidizerInletPressure,
}

var channelNames = map[Channel]string{
	OxidizerInletPressure:         "P_OIN",
	OxidizerInletTemperature:      "T_OIN",
	EngineInletPressure:           "P_EIN",
	EngineInletTemperature:        "T_EIN",
	EngineInletTemperatureDigital: "T_EIN_DIGITAL",
	ChamberPressure:               "P_CCC",
	ChamberTemperature:            "T_CCC",
}

func (c Channel) String() string {
	if s, ok := channelNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CHANNEL(%d)", int(c))
}

// IsPressure reports whether the channel measures pressure.
func (c Channel) IsPressure() bool {
	return c == OxidizerInletPressure || c == EngineInletPressure || c == ChamberPressure
}

// Readings is the cached value of every channel.
type Readings struct {
	OxidizerInletPressure         float64
	OxidizerInletTemperature      float64
	EngineInletPressure           float64
	EngineInletTemperature        float64
	EngineInletTemperatureDigital float64
	ChamberPressure               float64
	ChamberTemperature            float64
}

// Get returns the cached value of ch, or 0 for an unknown channel.
func (r Readings) Get(ch Channel) float64 {
	if p := r.field(ch); p != nil {
		return *p
	}
	return 0
}

// Set stores v for ch. Unknown channels are ignored.
func (r *Readings) Set(ch Channel, v float64) {
	if p := r.field(ch); p != nil {
		*p = v
	}
}

func (r *Readings) field(ch Channel) *float64 {
	switch ch {
	case OxidizerInletPressure:
		return &r.OxidizerInletPressure
	case OxidizerInletTemperature:
		return &r.OxidizerInletTemperature
	case EngineInletPressure:
		return &r.EngineInletPressure
	case EngineInletTemperature:
		return &r.EngineInletTemperature
	case EngineInletTemperatureDigital:
		return &r.EngineInletTemperatureDigital
	case ChamberPressure:
		return &r.ChamberPressure
	case ChamberTemperature:
		return &r.ChamberTemperature
	}
	return nil
}
