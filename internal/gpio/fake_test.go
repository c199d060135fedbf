package gpio

import (
	"errors"
	"testing"
)

func TestFakeWriterSet(t *testing.T) {
	f := NewFakeWriter()

	if err := f.Set(17, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Level(17) {
		t.Error("pin 17: expected high")
	}

	if err := f.Set(17, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Level(17) {
		t.Error("pin 17: expected low")
	}

	if got := f.Writes(17); got != 2 {
		t.Errorf("writes: expected 2, got %d", got)
	}
}

func TestFakeWriterUnwrittenPinIsLow(t *testing.T) {
	f := NewFakeWriter()
	if f.Level(4) {
		t.Error("unwritten pin should read low")
	}
}

func TestFakeWriterError(t *testing.T) {
	f := NewFakeWriter()
	f.SetError = errors.New("simulated error")

	err := f.Set(17, true)
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
	if f.Level(17) {
		t.Error("failed write should not change level")
	}
	if len(f.History) != 0 {
		t.Errorf("history: expected empty, got %v", f.History)
	}
}

func TestFakeWriterCloseDrivesLow(t *testing.T) {
	f := NewFakeWriter()
	f.Set(17, true)
	f.Set(27, true)

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
	if f.Level(17) || f.Level(27) {
		t.Error("all pins should be low after Close()")
	}
}

func TestFakeWriterHistoryOrder(t *testing.T) {
	f := NewFakeWriter()
	f.Set(5, true)
	f.Set(6, false)
	f.Set(5, false)

	want := []Write{{5, true}, {6, false}, {5, false}}
	if len(f.History) != len(want) {
		t.Fatalf("history length: expected %d, got %d", len(want), len(f.History))
	}
	for i, w := range want {
		if f.History[i] != w {
			t.Errorf("history[%d]: expected %+v, got %+v", i, w, f.History[i])
		}
	}
}

func TestFakeWriterReset(t *testing.T) {
	f := NewFakeWriter()
	f.Set(17, true)
	f.Close()

	f.Reset()

	if f.Closed {
		t.Error("should not be closed after Reset()")
	}
	if f.Level(17) || len(f.History) != 0 {
		t.Error("reset should clear levels and history")
	}
}

func TestFakeWriterImplementsWriter(t *testing.T) {
	var _ Writer = NewFakeWriter()
	var _ Writer = &RealWriter{}
	var _ Writer = &PeriphWriter{}
}
