package impulse

import "time"

// Timer ends the burn after a fixed BurnDuration without integrating.
type Timer struct {
	duration time.Duration
	start    time.Time
	active   bool
}

// NewTimer creates a Timer.
func NewTimer(cfg Config) *Timer {
	return &Timer{duration: cfg.BurnDuration}
}

func (t *Timer) Begin(now time.Time) {
	t.start = now
	t.active = true
}

func (t *Timer) Step(now time.Time, _ float64) bool {
	return t.active && now.Sub(t.start) >= t.duration
}

func (t *Timer) Stop() {
	t.active = false
}

func (t *Timer) Reset() {
	t.start = time.Time{}
	t.active = false
}

func (t *Timer) State() State {
	return State{Active: t.active}
}
