package impulse

import "time"

// Integrator ends the burn once the delivered impulse reaches the target,
// bounded below by MinBurn and above by MaxBurn.
type Integrator struct {
	cfg    Config
	target float64
	start  time.Time
	st     State
}

// NewIntegrator creates an Integrator.
func NewIntegrator(cfg Config) *Integrator {
	return &Integrator{cfg: cfg, target: cfg.TargetIntegral()}
}

func (i *Integrator) Begin(now time.Time) {
	i.start = now
	i.st.Active = true
	i.st.LastTime = time.Time{}
}

// Step accumulates pressure·Δt. The first step after Begin only records the
// baseline time.
func (i *Integrator) Step(now time.Time, chamberBar float64) bool {
	if !i.st.Active {
		return false
	}
	if i.st.LastTime.IsZero() {
		i.st.LastTime = now
		return false
	}

	dt := now.Sub(i.st.LastTime).Seconds()
	if dt > 0 {
		i.st.Integral += chamberBar * 1e5 * dt
	}
	i.st.LastTime = now
	i.st.TotalImpulse = i.cfg.ImpulseOf(i.st.Integral)

	elapsed := now.Sub(i.start)
	if elapsed < i.cfg.MinBurn {
		return false
	}
	return i.st.Integral >= i.target || elapsed >= i.cfg.MaxBurn
}

func (i *Integrator) Stop() {
	i.st.Active = false
}

func (i *Integrator) Reset() {
	i.st = State{}
	i.start = time.Time{}
}

func (i *Integrator) State() State {
	return i.st
}
