package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/prb-computer/internal/sequencer"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Bench         BenchJSON    `json:"bench"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// BenchJSON is the JSON representation of a sequencer snapshot.
type BenchJSON struct {
	State         string      `json:"state"`
	StateCode     int         `json:"state_code"`
	Ignition      string      `json:"ignition"`
	Passivation   string      `json:"passivation"`
	Abort         string      `json:"abort"`
	LED           string      `json:"led"`
	Valves        ValvesJSON  `json:"valves"`
	Sensors       SensorsJSON `json:"sensors"`
	Burn          BurnJSON    `json:"burn"`
	Window        []float64   `json:"pressure_window"`
	HostTimestamp uint32      `json:"host_timestamp"`
	WokenUp       bool        `json:"woken_up"`
	Passivate     bool        `json:"passivation_requested"`
	SensorBusOff  bool        `json:"sensor_bus_off"`
}

// ValvesJSON reports commanded valve states.
type ValvesJSON struct {
	MainEngine bool `json:"main_engine"`
	Oxidizer   bool `json:"oxidizer"`
	Igniter    bool `json:"igniter"`
}

// SensorsJSON reports cached readings in bar and °C.
type SensorsJSON struct {
	OxidizerInletPressure         float64 `json:"p_oin"`
	OxidizerInletTemperature      float64 `json:"t_oin"`
	EngineInletPressure           float64 `json:"p_ein"`
	EngineInletTemperature        float64 `json:"t_ein"`
	EngineInletTemperatureDigital float64 `json:"t_ein_digital"`
	ChamberPressure               float64 `json:"p_ccc"`
	ChamberTemperature            float64 `json:"t_ccc"`
}

// BurnJSON reports the impulse integrator.
type BurnJSON struct {
	Active       bool    `json:"active"`
	Integral     float64 `json:"integral_pa_s"`
	TotalImpulse float64 `json:"total_impulse_ns"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs         int64  `json:"tick_ms"`
	SensorPollMs   int64  `json:"sensor_poll_ms"`
	TelemetryMs    int64  `json:"telemetry_ms"`
	Broker         string `json:"broker"`
	HTTPAddr       string `json:"http_addr"`
	WSBroker       string `json:"ws_broker,omitempty"`
	SerialPort     string `json:"serial_port,omitempty"`
	GPIODriver     string `json:"gpio_driver"`
	BurnMode       string `json:"burn_mode"`
	Shutdown       string `json:"shutdown"`
	OxidizerSensor string `json:"oxidizer_sensor"`
	ColdFlow       bool   `json:"cold_flow"`
}

// Bench converts a sequencer snapshot to its JSON form.
func Bench(s sequencer.Snapshot) BenchJSON {
	m := s.Memory
	r := m.Readings
	return BenchJSON{
		State:       s.State.String(),
		StateCode:   int(s.State),
		Ignition:    s.Ignition.String(),
		Passivation: s.Passivation.String(),
		Abort:       s.Abort.String(),
		LED:         s.Color.String(),
		Valves: ValvesJSON{
			MainEngine: m.Valves.MainEngine,
			Oxidizer:   m.Valves.Oxidizer,
			Igniter:    m.Valves.Igniter,
		},
		Sensors: SensorsJSON{
			OxidizerInletPressure:         r.OxidizerInletPressure,
			OxidizerInletTemperature:      r.OxidizerInletTemperature,
			EngineInletPressure:           r.EngineInletPressure,
			EngineInletTemperature:        r.EngineInletTemperature,
			EngineInletTemperatureDigital: r.EngineInletTemperatureDigital,
			ChamberPressure:               r.ChamberPressure,
			ChamberTemperature:            r.ChamberTemperature,
		},
		Burn: BurnJSON{
			Active:       m.Burn.Active,
			Integral:     m.Burn.Integral,
			TotalImpulse: m.Burn.TotalImpulse,
		},
		Window:        m.Window[:],
		HostTimestamp: m.HostTimestamp,
		WokenUp:       m.WokenUp,
		Passivate:     m.PassivationRequested,
		SensorBusOff:  m.SensorBusOff,
	}
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Ready:         snap.Published,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Bench:         Bench(snap.Bench),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			TickMs:         snap.Config.TickMs,
			SensorPollMs:   snap.Config.SensorPollMs,
			TelemetryMs:    snap.Config.TelemetryMs,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
			WSBroker:       snap.Config.WSBroker,
			SerialPort:     snap.Config.SerialPort,
			GPIODriver:     snap.Config.GPIODriver,
			BurnMode:       snap.Config.BurnMode,
			Shutdown:       snap.Config.Shutdown,
			OxidizerSensor: snap.Config.OxidizerSensor,
			ColdFlow:       snap.Config.ColdFlow,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
