// Package valve opens and closes the bench valves and tracks their commanded state.
// There is no position feedback: the tracked state is the last command sent.
package valve

import (
	"fmt"
	"log"

	"github.com/sweeney/prb-computer/internal/gpio"
)

// Valve identifies a logical valve or actuator.
type Valve int

const (
	MainEngine Valve = iota
	Oxidizer
	Igniter
)

// All lists every valve in a fixed order.
var All = []Valve{MainEngine, Oxidizer, Igniter}

func (v Valve) String() string {
	switch v {
	case MainEngine:
		return "MAIN_ENGINE"
	case Oxidizer:
		return "OXIDIZER"
	case Igniter:
		return "IGNITER"
	}
	return fmt.Sprintf("VALVE(%d)", int(v))
}

// Pins maps each valve to its output line.
type Pins struct {
	MainEngine int
	Oxidizer   int
	Igniter    int
}

// DefaultPins returns the bench wiring.
func DefaultPins() Pins {
	return Pins{
		MainEngine: gpio.DefaultPinMainEngine,
		Oxidizer:   gpio.DefaultPinOxidizer,
		Igniter:    gpio.DefaultPinIgniter,
	}
}

// List returns the pins in valve order.
func (p Pins) List() []int {
	return []int{p.MainEngine, p.Oxidizer, p.Igniter}
}

func (p Pins) pin(v Valve) (int, bool) {
	switch v {
	case MainEngine:
		return p.MainEngine, true
	case Oxidizer:
		return p.Oxidizer, true
	case Igniter:
		return p.Igniter, true
	}
	return 0, false
}

// States is the commanded state of every valve. true = open.
type States struct {
	MainEngine bool
	Oxidizer   bool
	Igniter    bool
}

// Bank drives the valves through a gpio.Writer.
// Not safe for concurrent use; the sequencer owns it.
type Bank struct {
	out    gpio.Writer
	pins   Pins
	states States
}

// NewBank creates a Bank with every valve closed.
func NewBank(out gpio.Writer, pins Pins) *Bank {
	return &Bank{out: out, pins: pins}
}

// Open energizes the valve. Unknown valves are ignored.
func (b *Bank) Open(v Valve) {
	b.set(v, true)
}

// Close de-energizes the valve. Unknown valves are ignored.
func (b *Bank) Close(v Valve) {
	b.set(v, false)
}

// CloseAll closes every valve.
func (b *Bank) CloseAll() {
	for _, v := range All {
		b.Close(v)
	}
}

// State reports the last commanded state of v.
func (b *Bank) State(v Valve) bool {
	switch v {
	case MainEngine:
		return b.states.MainEngine
	case Oxidizer:
		return b.states.Oxidizer
	case Igniter:
		return b.states.Igniter
	}
	return false
}

// States returns the commanded state of all valves.
func (b *Bank) States() States {
	return b.states
}

func (b *Bank) set(v Valve, open bool) {
	pin, ok := b.pins.pin(v)
	if !ok {
		return
	}
	if err := b.out.Set(pin, open); err != nil {
		log.Printf("valve: set %s open=%v: %v", v, open, err)
	}
	switch v {
	case MainEngine:
		b.states.MainEngine = open
	case Oxidizer:
		b.states.Oxidizer = open
	case Igniter:
		b.states.Igniter = open
	}
}
