package sequencer

import (
	"testing"
	"time"

	"github.com/sweeney/prb-computer/internal/impulse"
	"github.com/sweeney/prb-computer/internal/indicator"
)

func TestIdleBlinksTeal(t *testing.T) {
	h := newHarness(t, nil)

	var colors []indicator.Color
	for i := 0; i < 4; i++ {
		colors = append(colors, h.step(h.cfg.LEDBlink).Color)
	}
	want := []indicator.Color{indicator.Teal, indicator.Off, indicator.Teal, indicator.Off}
	for i := range want {
		if colors[i] != want[i] {
			t.Errorf("blink %d: got %s, want %s", i, colors[i], want[i])
		}
	}
}

func TestBlinkHoldsWithinPeriod(t *testing.T) {
	h := newHarness(t, nil)
	h.step(h.cfg.LEDBlink)
	n := len(h.led.shown)

	h.step(h.cfg.LEDBlink / 2)
	if len(h.led.shown) != n {
		t.Error("LED should not change within the blink period")
	}
}

func TestArmedBlinksOrange(t *testing.T) {
	h := newHarness(t, nil)
	h.apply(Command{Kind: CmdClearToIgnite, On: true})

	if c := h.step(h.cfg.LEDBlink).Color; c != indicator.Orange {
		t.Errorf("got %s, want ORANGE", c)
	}
}

func TestStageColors(t *testing.T) {
	h := newHarness(t, nil)
	h.sensors.readings.ChamberPressure = 30
	h.arm()

	if c := h.step(tick).Color; c != indicator.White {
		t.Errorf("pre-chill: got %s, want WHITE", c)
	}
	if c := h.runUntil(func(s Snapshot) bool { return s.Ignition == Burn }, 10*time.Second).Color; c != indicator.Green {
		t.Errorf("burn: got %s, want GREEN", c)
	}
	h.apply(Command{Kind: CmdAbort, On: true})
	if c := h.step(tick).Color; c != indicator.Red {
		t.Errorf("abort: got %s, want RED", c)
	}
	if c := h.runUntil(inState(PassivationSequence), time.Minute).Color; c != indicator.Purple {
		t.Errorf("passivation: got %s, want PURPLE", c)
	}
}

func TestStageColorMapping(t *testing.T) {
	tests := []struct {
		state       SystemState
		ignition    IgnitionStage
		passivation PassivationStage
		abort       AbortStage
		want        indicator.Color
	}{
		{IgnitionSequence, PreChill, Sleep, AbortInactive, indicator.White},
		{IgnitionSequence, Ignition, Sleep, AbortInactive, indicator.White},
		{IgnitionSequence, BurnStartMainEngine, Sleep, AbortInactive, indicator.Blue},
		{IgnitionSequence, PressureCheck, Sleep, AbortInactive, indicator.Blue},
		{IgnitionSequence, Burn, Sleep, AbortInactive, indicator.Green},
		{IgnitionSequence, BurnStopMainEngine, Sleep, AbortInactive, indicator.Blue},
		{IgnitionSequence, WaitForPassivation, Sleep, AbortInactive, indicator.Blue},
		{PassivationSequence, NoGo, PassivationFuel, AbortInactive, indicator.Purple},
		{PassivationSequence, NoGo, VentOpenMainEngine, AbortInactive, indicator.Purple},
		{Abort, NoGo, Sleep, AbortOxidizer, indicator.Red},
		{Abort, NoGo, Sleep, WaitForPassivationAbort, indicator.Red},
	}

	for _, tt := range tests {
		s := &Sequencer{state: tt.state, ignition: tt.ignition, passivation: tt.passivation, abort: tt.abort}
		if got := s.stageColor(); got != tt.want {
			t.Errorf("%s/%s/%s/%s: got %s, want %s", tt.state, tt.ignition, tt.passivation, tt.abort, got, tt.want)
		}
	}
}

func TestSensorPollInterval(t *testing.T) {
	h := newHarness(t, func(c *Config, _ *impulse.Config) { c.SensorPoll = 100 * time.Millisecond })

	for i := 0; i < 100; i++ {
		h.step(tick)
	}
	// 1 s of 10 ms ticks at a 100 ms poll interval.
	if h.sensors.calls != 10 {
		t.Errorf("refresh calls: got %d, want 10", h.sensors.calls)
	}
}

func TestSensorReadingsCached(t *testing.T) {
	h := newHarness(t, nil)
	h.sensors.readings.ChamberTemperature = 21.5
	h.sensors.readings.OxidizerInletPressure = 42

	s := h.step(tick)

	if s.Memory.Readings.ChamberTemperature != 21.5 || s.Memory.Readings.OxidizerInletPressure != 42 {
		t.Errorf("readings not cached: %+v", s.Memory.Readings)
	}
	if !s.Memory.TimeSensorPoll.Equal(h.now) {
		t.Errorf("poll time: got %v, want %v", s.Memory.TimeSensorPoll, h.now)
	}
}

func TestHostTimestampAndWakeUp(t *testing.T) {
	h := newHarness(t, nil)
	h.apply(Command{Kind: CmdTimestamp, Timestamp: 123456})
	h.apply(Command{Kind: CmdWakeUp, On: true})

	s := h.seq.Snapshot()
	if s.Memory.HostTimestamp != 123456 {
		t.Errorf("timestamp: got %d", s.Memory.HostTimestamp)
	}
	if !s.Memory.WokenUp {
		t.Error("woken up flag should be set")
	}
	if s.State != Idle {
		t.Errorf("state: got %s, want IDLE", s.State)
	}
}

func TestStateStrings(t *testing.T) {
	if Abort.String() != "ABORT" || SystemState(42).String() != "STATE(42)" {
		t.Error("SystemState names")
	}
	if BurnStopOxidizer.String() != "BURN_STOP_MO" || IgnitionStage(-1).String() != "IGNITION(-1)" {
		t.Error("IgnitionStage names")
	}
	if Shutoff.String() != "SHUTOFF" || WaitForPassivationAbort.String() != "WAIT_FOR_PASSIVATION_ABORT" {
		t.Error("stage names")
	}
	if (Command{Kind: CmdValves, MainEngine: true}).String() != "VALVES(me=true mo=false)" {
		t.Errorf("command string: %s", Command{Kind: CmdValves, MainEngine: true})
	}
}

func TestStateCodes(t *testing.T) {
	codes := map[SystemState]int{
		Idle: 0, Wakeup: 1, Test: 2, Setup: 3, Wait: 4,
		ClearToIgnite: 5, IgnitionSequence: 6, PassivationSequence: 7, Abort: 8, Error: 9,
	}
	for st, want := range codes {
		if int(st) != want {
			t.Errorf("%s: code %d, want %d", st, int(st), want)
		}
	}
}
