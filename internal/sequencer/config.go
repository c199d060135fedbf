package sequencer

import "time"

// Shutdown shapes for a passivation that does not follow an abort.
const (
	ShutdownPurge = "purge"
	ShutdownVent  = "vent"
)

// Config holds the sequence timings and policies.
type Config struct {
	Prechill      time.Duration `yaml:"prechill"`
	Igniter       time.Duration `yaml:"igniter"`
	IgnitionDelay time.Duration `yaml:"ignition_delay"`
	Rampup        time.Duration `yaml:"rampup"`
	Cutoff        time.Duration `yaml:"cutoff_delay"`

	PassivationDelay      time.Duration `yaml:"passivation_delay"`
	PassivationFuel       time.Duration `yaml:"passivation_fuel"`
	PassivationOxidizer   time.Duration `yaml:"passivation_oxidizer"`
	AbortPassivationDelay time.Duration `yaml:"abort_passivation_delay"`

	// RampUpThreshold is the minimum mean chamber pressure (bar) at the gate.
	RampUpThreshold float64 `yaml:"rampup_threshold"`

	SensorPoll    time.Duration `yaml:"sensor_poll"`
	LEDBlink      time.Duration `yaml:"led_blink"`
	PrintInterval time.Duration `yaml:"print_interval"`
	Debug         bool          `yaml:"debug"`

	// ColdFlow skips opening the main engine valve during fuel passivation.
	ColdFlow bool `yaml:"cold_flow"`
	// Shutdown is "purge" or "vent".
	Shutdown string `yaml:"shutdown"`
	// PassivateOnGateFailure requests passivation after a failed ramp-up gate.
	PassivateOnGateFailure bool `yaml:"passivate_on_gate_failure"`
}

// DefaultConfig returns the bench sequence.
func DefaultConfig() Config {
	return Config{
		Prechill:              200 * time.Millisecond,
		Igniter:               4000 * time.Millisecond,
		IgnitionDelay:         250 * time.Millisecond,
		Rampup:                200 * time.Millisecond,
		Cutoff:                250 * time.Millisecond,
		PassivationDelay:      120 * time.Second,
		PassivationFuel:       10 * time.Second,
		PassivationOxidizer:   10 * time.Second,
		AbortPassivationDelay: 5 * time.Second,
		RampUpThreshold:       27.5,
		SensorPoll:            100 * time.Millisecond,
		LEDBlink:              time.Second,
		PrintInterval:         time.Second,
		Shutdown:              ShutdownPurge,
	}
}
