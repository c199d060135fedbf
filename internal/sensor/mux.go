package sensor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/prb-computer/internal/gpio"
)

// ErrBusDisabled is returned while the mux is held in reset.
var ErrBusDisabled = errors.New("sensor bus disabled")

// DefaultMuxAddr is the TCA9548A address.
const DefaultMuxAddr = 0x70

// Mux serializes access to devices behind an I2C multiplexer. Every
// transaction selects one channel and deselects all channels afterwards, so
// devices sharing an address never see each other's traffic.
type Mux struct {
	mu       sync.Mutex
	bus      Bus
	addr     uint8
	reset    gpio.Writer
	resetPin int
	pulse    time.Duration
	sleep    func(time.Duration)
	disabled bool
}

// NewMux creates a Mux. If reset is non-nil, the reset line is pulsed low for
// pulse before each selection and held low while disabled.
func NewMux(bus Bus, addr uint8, reset gpio.Writer, resetPin int, pulse time.Duration) *Mux {
	return &Mux{
		bus:      bus,
		addr:     addr,
		reset:    reset,
		resetPin: resetPin,
		pulse:    pulse,
		sleep:    time.Sleep,
	}
}

// Do selects channel, runs fn and deselects.
func (m *Mux) Do(channel uint8, fn func(Bus) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled {
		return ErrBusDisabled
	}

	if m.reset != nil && m.pulse > 0 {
		if err := m.reset.Set(m.resetPin, false); err != nil {
			return fmt.Errorf("pulse mux reset: %w", err)
		}
		m.sleep(m.pulse)
		if err := m.reset.Set(m.resetPin, true); err != nil {
			return fmt.Errorf("release mux reset: %w", err)
		}
	}

	// The TCA9548A latches the last byte of a write, so writing the mask
	// as both command and data selects exactly that channel.
	if err := m.bus.WriteReg(m.addr, channel, channel); err != nil {
		return fmt.Errorf("select mux channel %#02x: %w", channel, err)
	}

	err := fn(m.bus)

	if derr := m.bus.WriteReg(m.addr, 0, 0); derr != nil && err == nil {
		err = fmt.Errorf("deselect mux: %w", derr)
	}
	return err
}

// Disable holds the mux in reset and rejects further transactions.
func (m *Mux) Disable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = true
	if m.reset != nil {
		if err := m.reset.Set(m.resetPin, false); err != nil {
			return fmt.Errorf("hold mux reset: %w", err)
		}
	}
	return nil
}

// Enable releases the reset line.
func (m *Mux) Enable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reset != nil {
		if err := m.reset.Set(m.resetPin, true); err != nil {
			return fmt.Errorf("release mux reset: %w", err)
		}
	}
	m.disabled = false
	return nil
}

// Disabled reports whether the mux is held in reset.
func (m *Mux) Disabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disabled
}
