package gpio

import (
	"fmt"

	pgpio "periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// PeriphWriter drives outputs through the periph.io host drivers.
type PeriphWriter struct {
	pins map[int]pgpio.PinIO
}

// NewPeriphWriter initializes the periph host and resolves each BCM pin as GPIO<n>.
func NewPeriphWriter(pins []int) (*PeriphWriter, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	w := &PeriphWriter{pins: make(map[int]pgpio.PinIO, len(pins))}
	for _, n := range pins {
		name := fmt.Sprintf("GPIO%d", n)
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("lookup pin %s: not found", name)
		}
		if err := p.Out(pgpio.Low); err != nil {
			return nil, fmt.Errorf("configure pin %s: %w", name, err)
		}
		w.pins[n] = p
	}
	return w, nil
}

// Set drives the pin high or low.
func (w *PeriphWriter) Set(pin int, high bool) error {
	p, ok := w.pins[pin]
	if !ok {
		return fmt.Errorf("pin %d not configured", pin)
	}
	if err := p.Out(pgpio.Level(high)); err != nil {
		return fmt.Errorf("set pin %d: %w", pin, err)
	}
	return nil
}

// Close drives every pin low.
func (w *PeriphWriter) Close() error {
	var errs []error
	for n, p := range w.pins {
		if err := p.Out(pgpio.Low); err != nil {
			errs = append(errs, fmt.Errorf("drive pin %d low: %w", n, err))
		}
	}
	w.pins = nil
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
