// Package impulse decides when the main burn ends, either by integrating
// chamber pressure toward a target total impulse or by a fixed duration.
package impulse

import (
	"fmt"
	"time"
)

// Burn modes.
const (
	ModeIntegrate = "integrate"
	ModeTimed     = "timed"
)

// Config holds the engine constants and burn bounds.
type Config struct {
	Mode string `yaml:"mode"` // "integrate" or "timed"

	G          float64 `yaml:"g"`           // m/s²
	Isp        float64 `yaml:"isp"`         // s
	ThroatArea float64 `yaml:"throat_area"` // m²
	CStar      float64 `yaml:"c_star"`      // m/s

	MinBurn      time.Duration `yaml:"min_burn"`
	MaxBurn      time.Duration `yaml:"max_burn"`
	BurnDuration time.Duration `yaml:"burn_duration"` // timed mode only

	FlightImpulse float64 `yaml:"flight_impulse"` // N·s
	CutoffImpulse float64 `yaml:"cutoff_impulse"` // N·s delivered after the cutoff command
}

// DefaultConfig returns the engine constants of the bench motor.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeIntegrate,
		G:             9.80665,
		Isp:           250.87,
		ThroatArea:    0.001364411,
		CStar:         2437.28,
		MinBurn:       4500 * time.Millisecond,
		MaxBurn:       5000 * time.Millisecond,
		BurnDuration:  4250 * time.Millisecond,
		FlightImpulse: 32939,
		CutoffImpulse: 374.292,
	}
}

// TargetImpulse is the impulse at which the cutoff command is issued.
func (c Config) TargetImpulse() float64 {
	return c.FlightImpulse - c.CutoffImpulse
}

// TargetIntegral is the chamber-pressure integral (Pa·s) that delivers TargetImpulse.
func (c Config) TargetIntegral() float64 {
	return c.TargetImpulse() * c.CStar / (c.Isp * c.G * c.ThroatArea)
}

// ImpulseOf converts a chamber-pressure integral (Pa·s) to total impulse (N·s).
func (c Config) ImpulseOf(integral float64) float64 {
	return c.Isp * c.G * (c.ThroatArea / c.CStar) * integral
}

// State is the integrator memory.
type State struct {
	Integral     float64   // Pa·s
	LastTime     time.Time // zero until the first step of a burn
	TotalImpulse float64   // N·s
	Active       bool
}

// Burn decides when the burn phase ends.
type Burn interface {
	// Begin marks the start of the burn phase.
	Begin(now time.Time)
	// Step is called once per tick during the burn with the latest chamber
	// pressure in bar. It reports whether the burn should end.
	Step(now time.Time, chamberBar float64) bool
	// Stop freezes the integral.
	Stop()
	// Reset clears all state for a new ignition cycle.
	Reset()
	State() State
}

// New returns the Burn for cfg.Mode.
func New(cfg Config) (Burn, error) {
	switch cfg.Mode {
	case ModeIntegrate, "":
		return NewIntegrator(cfg), nil
	case ModeTimed:
		return NewTimer(cfg), nil
	}
	return nil, fmt.Errorf("unknown burn mode %q", cfg.Mode)
}
