package impulse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)

// runBurn steps b every tick at a constant pressure and returns the elapsed
// time at which it reported termination, plus the impulse series.
func runBurn(b Burn, bar float64, tick, limit time.Duration) (time.Duration, []float64) {
	b.Begin(t0)
	var impulses []float64
	for el := time.Duration(0); el <= limit; el += tick {
		done := b.Step(t0.Add(el), bar)
		impulses = append(impulses, b.State().TotalImpulse)
		if done {
			return el, impulses
		}
	}
	return -1, impulses
}

func TestDefaultTargets(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 32564.708, cfg.TargetImpulse(), 1e-6)
	// Round trip: the target integral converts back to the target impulse.
	assert.InDelta(t, cfg.TargetImpulse(), cfg.ImpulseOf(cfg.TargetIntegral()), 1e-6)
}

func TestFirstStepOnlyRecordsBaseline(t *testing.T) {
	i := NewIntegrator(DefaultConfig())
	i.Begin(t0)

	assert.False(t, i.Step(t0.Add(10*time.Second), 50))
	st := i.State()
	assert.Equal(t, 0.0, st.Integral)
	assert.Equal(t, t0.Add(10*time.Second), st.LastTime)
	assert.True(t, st.Active)
}

func TestIntegralAccumulates(t *testing.T) {
	cfg := DefaultConfig()
	i := NewIntegrator(cfg)
	i.Begin(t0)
	i.Step(t0, 20)
	i.Step(t0.Add(100*time.Millisecond), 20)
	i.Step(t0.Add(300*time.Millisecond), 10)

	// 20 bar · 0.1 s + 10 bar · 0.2 s = 4 bar·s = 4e5 Pa·s
	st := i.State()
	assert.InDelta(t, 4e5, st.Integral, 1e-6)
	assert.InDelta(t, cfg.ImpulseOf(4e5), st.TotalImpulse, 1e-9)
}

func TestHighPressureHoldsUntilMinBurn(t *testing.T) {
	cfg := DefaultConfig()
	// 100 bar reaches the target after ~2.4 s, well before MinBurn.
	end, _ := runBurn(NewIntegrator(cfg), 100, 10*time.Millisecond, 10*time.Second)
	assert.Equal(t, cfg.MinBurn, end)
}

func TestLowPressureStopsAtMaxBurn(t *testing.T) {
	cfg := DefaultConfig()
	end, _ := runBurn(NewIntegrator(cfg), 30, 10*time.Millisecond, 10*time.Second)
	assert.Equal(t, cfg.MaxBurn, end)
}

func TestTargetBetweenMinAndMax(t *testing.T) {
	cfg := DefaultConfig()
	// 50 bar for 4.73 s is 2.365e7 Pa·s, just past the default target.
	end, _ := runBurn(NewIntegrator(cfg), 50, 10*time.Millisecond, 10*time.Second)
	require.Greater(t, end, cfg.MinBurn)
	require.Less(t, end, cfg.MaxBurn)
	assert.InDelta(t, 4.73, end.Seconds(), 0.02)
}

func TestBurnWindowBounds(t *testing.T) {
	cfg := DefaultConfig()
	for _, bar := range []float64{0, 5, 27.5, 45, 49, 55, 80, 200} {
		end, impulses := runBurn(NewIntegrator(cfg), bar, 7*time.Millisecond, 10*time.Second)
		require.GreaterOrEqual(t, end, cfg.MinBurn, "bar=%v", bar)
		require.LessOrEqual(t, end, cfg.MaxBurn+7*time.Millisecond, "bar=%v", bar)
		for k := 1; k < len(impulses); k++ {
			assert.GreaterOrEqual(t, impulses[k], impulses[k-1], "bar=%v step %d", bar, k)
		}
	}
}

func TestStopFreezesIntegral(t *testing.T) {
	i := NewIntegrator(DefaultConfig())
	i.Begin(t0)
	i.Step(t0, 30)
	i.Step(t0.Add(time.Second), 30)
	frozen := i.State().Integral

	i.Stop()
	assert.False(t, i.Step(t0.Add(2*time.Second), 30))
	assert.Equal(t, frozen, i.State().Integral)
	assert.False(t, i.State().Active)
}

func TestResetClearsState(t *testing.T) {
	i := NewIntegrator(DefaultConfig())
	i.Begin(t0)
	i.Step(t0, 30)
	i.Step(t0.Add(time.Second), 30)

	i.Reset()
	assert.Equal(t, State{}, i.State())
}

func TestTimerEndsAtBurnDuration(t *testing.T) {
	cfg := DefaultConfig()
	tm := NewTimer(cfg)
	tm.Begin(t0)

	assert.False(t, tm.Step(t0.Add(4249*time.Millisecond), 0))
	assert.True(t, tm.Step(t0.Add(4250*time.Millisecond), 0))
	assert.Equal(t, 0.0, tm.State().TotalImpulse)
}

func TestNewSelectsMode(t *testing.T) {
	cfg := DefaultConfig()

	b, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Integrator{}, b)

	cfg.Mode = ModeTimed
	b, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Timer{}, b)

	cfg.Mode = "rocketry"
	_, err = New(cfg)
	assert.Error(t, err)
}
