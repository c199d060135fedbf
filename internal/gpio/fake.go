package gpio

import "sync"

// FakeWriter is a test double that records output levels.
type FakeWriter struct {
	mu sync.Mutex

	// Levels holds the last level written per pin.
	Levels map[int]bool

	// History records every write in order.
	History []Write

	// SetError, if set, will be returned by Set. The level is not recorded.
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// Write is a single recorded Set call.
type Write struct {
	Pin  int
	High bool
}

// NewFakeWriter creates a FakeWriter with all pins low.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{Levels: make(map[int]bool)}
}

// Set records the level.
func (f *FakeWriter) Set(pin int, high bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.Levels[pin] = high
	f.History = append(f.History, Write{Pin: pin, High: high})
	return nil
}

// Level returns the last level written to pin.
func (f *FakeWriter) Level(pin int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Levels[pin]
}

// Writes returns how many Set calls were recorded for pin.
func (f *FakeWriter) Writes(pin int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.History {
		if w.Pin == pin {
			n++
		}
	}
	return n
}

// Close marks the writer as closed and drives every pin low.
func (f *FakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for pin := range f.Levels {
		f.Levels[pin] = false
	}
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakeWriter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Levels = make(map[int]bool)
	f.History = nil
	f.SetError = nil
	f.Closed = false
}
