package sensor

import (
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	// ErrUnknownChannel is returned for a channel with no configured route.
	ErrUnknownChannel = errors.New("unknown sensor channel")

	// ErrNoBus is returned when a digital channel is read without a mux.
	ErrNoBus = errors.New("no sensor bus")
)

// Oxidizer-inlet pressure sources.
const (
	OxidizerDigital = "digital"
	OxidizerKulite  = "kulite"
)

// Config selects sensor routing and calibration.
type Config struct {
	OxidizerSensor string `yaml:"oxidizer_sensor"` // "digital" or "kulite"

	I2CBus     int           `yaml:"i2c_bus"`
	MuxAddr    uint8         `yaml:"mux_addr"`
	SensorAddr uint8         `yaml:"sensor_addr"`
	MuxPulse   time.Duration `yaml:"mux_reset_pulse"`

	// Mux channel masks of the digital sensors.
	EngineInletMux   uint8 `yaml:"engine_inlet_mux"`
	ChamberMux       uint8 `yaml:"chamber_mux"`
	OxidizerInletMux uint8 `yaml:"oxidizer_inlet_mux"`

	// ADC inputs of the analog sensors.
	IIODevice                string `yaml:"iio_device"`
	OxidizerInletPressureADC int    `yaml:"oxidizer_inlet_pressure_adc"`
	OxidizerInletTempADC     int    `yaml:"oxidizer_inlet_temperature_adc"`
	EngineInletTempADC       int    `yaml:"engine_inlet_temperature_adc"`

	Calibration Calibration `yaml:"calibration"`
}

// DefaultConfig returns the bench wiring.
func DefaultConfig() Config {
	return Config{
		OxidizerSensor:           OxidizerDigital,
		I2CBus:                   1,
		MuxAddr:                  DefaultMuxAddr,
		SensorAddr:               DefaultSensorAddr,
		MuxPulse:                 10 * time.Millisecond,
		EngineInletMux:           0x01,
		ChamberMux:               0x02,
		OxidizerInletMux:         0x04,
		IIODevice:                DefaultIIODevice,
		OxidizerInletPressureADC: 6,
		OxidizerInletTempADC:     13,
		EngineInletTempADC:       12,
		Calibration:              DefaultCalibration(),
	}
}

type routeKind int

const (
	routePT1000 routeKind = iota
	routeKulite
	routeDigital
)

type route struct {
	kind routeKind
	adc  int
	mux  uint8
}

// Acquisition reads calibrated values. Channel routes are resolved once at
// construction; reads never block on anything but the bus itself.
type Acquisition struct {
	cal    Calibration
	addr   uint8
	adc    ADC
	mux    *Mux
	routes map[Channel]route
}

// New creates an Acquisition. adc or mux may be nil if the board lacks that path;
// channels routed through a missing path read as errors.
func New(cfg Config, adc ADC, mux *Mux) *Acquisition {
	routes := map[Channel]route{
		OxidizerInletTemperature:      {kind: routePT1000, adc: cfg.OxidizerInletTempADC},
		EngineInletTemperature:        {kind: routePT1000, adc: cfg.EngineInletTempADC},
		EngineInletPressure:           {kind: routeDigital, mux: cfg.EngineInletMux},
		EngineInletTemperatureDigital: {kind: routeDigital, mux: cfg.EngineInletMux},
		ChamberPressure:               {kind: routeDigital, mux: cfg.ChamberMux},
		ChamberTemperature:            {kind: routeDigital, mux: cfg.ChamberMux},
	}
	if cfg.OxidizerSensor == OxidizerKulite {
		routes[OxidizerInletPressure] = route{kind: routeKulite, adc: cfg.OxidizerInletPressureADC}
	} else {
		routes[OxidizerInletPressure] = route{kind: routeDigital, mux: cfg.OxidizerInletMux}
	}

	return &Acquisition{
		cal:    cfg.Calibration,
		addr:   cfg.SensorAddr,
		adc:    adc,
		mux:    mux,
		routes: routes,
	}
}

// ReadPressure returns the pressure of ch in bar. Unknown or failed channels
// are logged and read as 0.
func (a *Acquisition) ReadPressure(ch Channel) float64 {
	if !ch.IsPressure() {
		log.Printf("sensor: read pressure %s: %v", ch, ErrUnknownChannel)
		return 0
	}
	v, err := a.Read(ch)
	if err != nil {
		log.Printf("sensor: read pressure %s: %v", ch, err)
		return 0
	}
	return v
}

// ReadTemperature returns the temperature of ch in °C. Unknown or failed
// channels are logged and read as 0.
func (a *Acquisition) ReadTemperature(ch Channel) float64 {
	if _, ok := a.routes[ch]; !ok || ch.IsPressure() {
		log.Printf("sensor: read temperature %s: %v", ch, ErrUnknownChannel)
		return 0
	}
	v, err := a.Read(ch)
	if err != nil {
		log.Printf("sensor: read temperature %s: %v", ch, err)
		return 0
	}
	return v
}

// Read returns the calibrated value of ch.
func (a *Acquisition) Read(ch Channel) (float64, error) {
	r, ok := a.routes[ch]
	if !ok {
		return 0, ErrUnknownChannel
	}

	switch r.kind {
	case routePT1000, routeKulite:
		if a.adc == nil {
			return 0, fmt.Errorf("adc %d: no adc", r.adc)
		}
		raw, err := a.adc.Read(r.adc)
		if err != nil {
			return 0, err
		}
		if r.kind == routeKulite {
			return a.cal.KuliteBar(raw), nil
		}
		return a.cal.PT1000Celsius(raw), nil
	}

	p, t, err := a.readDigital(r.mux)
	if err != nil {
		return 0, err
	}
	if ch.IsPressure() {
		return p, nil
	}
	return t, nil
}

func (a *Acquisition) readDigital(channel uint8) (bar, celsius float64, err error) {
	if a.mux == nil {
		return 0, 0, ErrNoBus
	}
	var s, t int16
	err = a.mux.Do(channel, func(bus Bus) error {
		var rerr error
		s, t, rerr = ReadDigital(bus, a.addr)
		return rerr
	})
	if err != nil {
		return 0, 0, err
	}
	return a.cal.DigitalBar(s), a.cal.DigitalCelsius(t), nil
}

// Refresh reads every channel. A channel that fails keeps its value from
// prev; failures are logged and never retried within the same refresh.
// Pressure and temperature of one digital sensor share a single selection.
func (a *Acquisition) Refresh(prev Readings) Readings {
	next := prev
	done := make(map[uint8]bool)

	for _, ch := range Channels {
		r, ok := a.routes[ch]
		if !ok {
			continue
		}
		if r.kind != routeDigital {
			v, err := a.Read(ch)
			if err != nil {
				log.Printf("sensor: refresh %s: %v", ch, err)
				continue
			}
			next.Set(ch, v)
			continue
		}

		if done[r.mux] {
			continue
		}
		done[r.mux] = true
		p, t, err := a.readDigital(r.mux)
		if err != nil {
			log.Printf("sensor: refresh mux channel %#02x: %v", r.mux, err)
			continue
		}
		for other, or := range a.routes {
			if or.kind != routeDigital || or.mux != r.mux {
				continue
			}
			if other.IsPressure() {
				next.Set(other, p)
			} else {
				next.Set(other, t)
			}
		}
	}
	return next
}

// DisableBus holds the sensor mux in reset.
func (a *Acquisition) DisableBus() error {
	if a.mux == nil {
		return nil
	}
	return a.mux.Disable()
}

// EnableBus releases the sensor mux.
func (a *Acquisition) EnableBus() error {
	if a.mux == nil {
		return nil
	}
	return a.mux.Enable()
}
