package valve

import (
	"errors"
	"testing"

	"github.com/sweeney/prb-computer/internal/gpio"
)

func TestOpenThenCloseLeavesClosed(t *testing.T) {
	for _, v := range All {
		out := gpio.NewFakeWriter()
		b := NewBank(out, DefaultPins())

		b.Open(v)
		if !b.State(v) {
			t.Errorf("%s: expected open after Open", v)
		}
		b.Close(v)
		if b.State(v) {
			t.Errorf("%s: expected closed after Open+Close", v)
		}
	}
}

func TestCloseThenOpenLeavesOpen(t *testing.T) {
	for _, v := range All {
		out := gpio.NewFakeWriter()
		b := NewBank(out, DefaultPins())

		b.Close(v)
		b.Open(v)
		if !b.State(v) {
			t.Errorf("%s: expected open after Close+Open", v)
		}
	}
}

func TestStateMirrorsOutput(t *testing.T) {
	out := gpio.NewFakeWriter()
	pins := DefaultPins()
	b := NewBank(out, pins)

	b.Open(MainEngine)
	b.Open(Igniter)
	b.Close(Igniter)

	if !out.Level(pins.MainEngine) {
		t.Error("main engine line should be high")
	}
	if out.Level(pins.Igniter) {
		t.Error("igniter line should be low")
	}
	if out.Level(pins.Oxidizer) {
		t.Error("oxidizer line should be untouched")
	}

	want := States{MainEngine: true}
	if got := b.States(); got != want {
		t.Errorf("States: got %+v, want %+v", got, want)
	}
}

func TestUnknownValveIsNoop(t *testing.T) {
	out := gpio.NewFakeWriter()
	b := NewBank(out, DefaultPins())

	b.Open(Valve(42))
	b.Close(Valve(-1))

	if len(out.History) != 0 {
		t.Errorf("unknown valve should not touch outputs, got %v", out.History)
	}
	if b.State(Valve(42)) {
		t.Error("unknown valve should report closed")
	}
	if b.States() != (States{}) {
		t.Errorf("states should be unchanged, got %+v", b.States())
	}
}

func TestOutputErrorStillTracksCommand(t *testing.T) {
	out := gpio.NewFakeWriter()
	out.SetError = errors.New("line busy")
	b := NewBank(out, DefaultPins())

	b.Open(Oxidizer)

	if !b.State(Oxidizer) {
		t.Error("state should follow the command even when the write fails")
	}
}

func TestCloseAll(t *testing.T) {
	out := gpio.NewFakeWriter()
	pins := DefaultPins()
	b := NewBank(out, pins)
	for _, v := range All {
		b.Open(v)
	}

	b.CloseAll()

	if b.States() != (States{}) {
		t.Errorf("expected all closed, got %+v", b.States())
	}
	for _, p := range pins.List() {
		if out.Level(p) {
			t.Errorf("pin %d should be low", p)
		}
	}
}

func TestValveString(t *testing.T) {
	tests := []struct {
		v    Valve
		want string
	}{
		{MainEngine, "MAIN_ENGINE"},
		{Oxidizer, "OXIDIZER"},
		{Igniter, "IGNITER"},
		{Valve(9), "VALVE(9)"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String(%d): got %q, want %q", int(tt.v), got, tt.want)
		}
	}
}
