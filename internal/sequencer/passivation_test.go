package sequencer

import (
	"testing"
	"time"

	"github.com/sweeney/prb-computer/internal/impulse"
	"github.com/sweeney/prb-computer/internal/valve"
)

// toPassivation drives a full timed burn into the passivation sequence.
func (h *harness) toPassivation() Snapshot {
	h.t.Helper()
	h.sensors.readings.ChamberPressure = 30
	h.arm()
	return h.runUntil(inState(PassivationSequence), 3*time.Minute)
}

func TestPurgePassivation(t *testing.T) {
	h := newHarness(t, nil)
	h.toPassivation()

	s := h.step(tick)
	if s.Passivation != PassivationOxidizer || !s.Memory.Valves.MainEngine {
		t.Fatalf("fuel purge: got %s valves=%+v", s.Passivation, s.Memory.Valves)
	}
	fuelStart := h.now

	s = h.runUntil(func(s Snapshot) bool { return s.Passivation == Shutoff }, time.Minute)
	if got := h.now.Sub(fuelStart); got < h.cfg.PassivationFuel {
		t.Errorf("fuel purge lasted %v, want >= %v", got, h.cfg.PassivationFuel)
	}
	if want := (valve.States{Oxidizer: true}); s.Memory.Valves != want {
		t.Errorf("oxidizer purge valves: got %+v, want %+v", s.Memory.Valves, want)
	}
	oxStart := h.now

	s = h.runUntil(inState(Idle), time.Minute)
	if got := h.now.Sub(oxStart); got < h.cfg.PassivationOxidizer {
		t.Errorf("oxidizer purge lasted %v, want >= %v", got, h.cfg.PassivationOxidizer)
	}
	if s.Passivation != Sleep {
		t.Errorf("stage: got %s, want SLEEP", s.Passivation)
	}
	if !allClosed(s) {
		t.Errorf("valves: got %+v, want all closed", s.Memory.Valves)
	}
}

func TestColdFlowSkipsMainEngine(t *testing.T) {
	h := newHarness(t, func(c *Config, _ *impulse.Config) { c.ColdFlow = true })
	h.toPassivation()

	s := h.step(tick)
	if s.Passivation != PassivationOxidizer {
		t.Fatalf("stage: got %s, want PASSIVATION_OX", s.Passivation)
	}
	if s.Memory.Valves.MainEngine {
		t.Error("cold flow must not open the main engine during fuel passivation")
	}
}

func TestVentPassivation(t *testing.T) {
	h := newHarness(t, func(c *Config, _ *impulse.Config) { c.Shutdown = ShutdownVent })
	s := h.toPassivation()
	if s.Passivation != VentCloseOxidizer {
		t.Fatalf("stage: got %s, want VENT_CLOSE_MO", s.Passivation)
	}

	order := []struct {
		stage  PassivationStage
		valves valve.States
	}{
		{VentCloseMainEngine, valve.States{}},
		{VentOpenOxidizer, valve.States{}},
		{VentOpenMainEngine, valve.States{Oxidizer: true}},
		{Shutoff, valve.States{Oxidizer: true, MainEngine: true}},
	}
	for _, o := range order {
		s = h.runUntil(func(s Snapshot) bool { return s.Passivation == o.stage }, time.Minute)
		if s.Memory.Valves != o.valves {
			t.Errorf("%s: valves got %+v, want %+v", o.stage, s.Memory.Valves, o.valves)
		}
	}

	s = h.runUntil(inState(Idle), time.Minute)
	if want := (valve.States{Oxidizer: true, MainEngine: true}); s.Memory.Valves != want {
		t.Errorf("vent should end with lines open, got %+v", s.Memory.Valves)
	}
	if s.Memory.Vent {
		t.Error("vent flag should clear when passivation completes")
	}
}

func TestPassivateCommandDuringIgnition(t *testing.T) {
	h := newHarness(t, nil)
	h.sensors.readings.ChamberPressure = 30
	h.toStage(Burn)

	if !h.apply(Command{Kind: CmdPassivate}) {
		t.Fatal("Passivate should be accepted during ignition")
	}
	s := h.seq.Snapshot()
	if s.State != PassivationSequence || s.Passivation != PassivationFuel {
		t.Errorf("got %s/%s, want PASSIVATION_SEQUENCE/PASSIVATION_FUEL", s.State, s.Passivation)
	}
	if s.Ignition != NoGo {
		t.Errorf("ignition stage: got %s, want NOGO", s.Ignition)
	}
	if s.Memory.Valves.Oxidizer || s.Memory.Valves.Igniter {
		t.Errorf("oxidizer and igniter should close, got %+v", s.Memory.Valves)
	}
	if s.Memory.Burn.Active {
		t.Error("integration should stop")
	}
}
