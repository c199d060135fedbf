// Package status provides a thread-safe status tracker for the prb-computer daemon.
// The control loop publishes sequencer snapshots into it; HTTP handlers, the
// MQTT command path and the host gateway read from it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/prb-computer/internal/sequencer"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs         int64
	SensorPollMs   int64
	TelemetryMs    int64
	Broker         string
	HTTPAddr       string
	WSBroker       string // Websocket broker URL for browser MQTT (empty = disabled)
	SerialPort     string
	GPIODriver     string
	BurnMode       string
	Shutdown       string
	OxidizerSensor string
	ColdFlow       bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Bench         sequencer.Snapshot
	Published     bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest sequencer snapshot.
// Called from runLoop on every tick.
func (t *Tracker) Update(bench sequencer.Snapshot) {
	t.mu.Lock()
	t.snap.Bench = bench
	t.snap.Published = true
	t.mu.Unlock()
}

// Latest returns the most recent sequencer snapshot.
func (t *Tracker) Latest() sequencer.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Bench
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
