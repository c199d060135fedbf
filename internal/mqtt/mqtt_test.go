package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/prb-computer/internal/impulse"
	"github.com/sweeney/prb-computer/internal/sensor"
	"github.com/sweeney/prb-computer/internal/sequencer"
	"github.com/sweeney/prb-computer/internal/valve"
)

func passivationSnapshot() sequencer.Snapshot {
	return sequencer.Snapshot{
		State:       sequencer.PassivationSequence,
		Ignition:    sequencer.NoGo,
		Passivation: sequencer.PassivationOxidizer,
		Abort:       sequencer.AbortInactive,
		Memory: sequencer.Memory{
			Valves:   valve.States{MainEngine: true},
			Readings: sensor.Readings{EngineInletPressure: 4.5, ChamberTemperature: 80},
			Burn:     impulse.State{TotalImpulse: 32564.7},
		},
	}
}

func TestTopics(t *testing.T) {
	topics := map[string]string{
		TopicTelemetry: "prb/bench/telemetry",
		TopicSystem:    "prb/bench/system",
		TopicCommand:   "prb/bench/command",
		TopicResponse:  "prb/bench/response",
	}
	for got, want := range topics {
		if got != want {
			t.Errorf("topic: got %q, want %q", got, want)
		}
	}
}

func TestFormatTelemetry(t *testing.T) {
	at := time.Date(2026, 3, 8, 12, 0, 0, 500_000_000, time.FixedZone("CET", 3600))

	payload, err := FormatTelemetry(passivationSnapshot(), at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed TelemetryPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Timestamp != "2026-03-08T11:00:00.5Z" {
		t.Errorf("timestamp: got %s", parsed.Timestamp)
	}
	b := parsed.Bench
	if b.State != "PASSIVATION_SEQUENCE" || b.StateCode != 7 {
		t.Errorf("state: got %s (%d)", b.State, b.StateCode)
	}
	if b.Passivation != "PASSIVATION_OX" {
		t.Errorf("passivation: got %s", b.Passivation)
	}
	if !b.Valves.MainEngine || b.Valves.Oxidizer {
		t.Errorf("valves: got %+v", b.Valves)
	}
	if b.Sensors.EngineInletPressure != 4.5 || b.Sensors.ChamberTemperature != 80 {
		t.Errorf("sensors: got %+v", b.Sensors)
	}
	if b.Burn.TotalImpulse != 32564.7 {
		t.Errorf("impulse: got %v", b.Burn.TotalImpulse)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: %s", payload)
	}
}

func TestWillPayloadFormat(t *testing.T) {
	expected := `{"system":{"event":"OFFLINE","reason":"LWT"}}`
	if got := string(willPayload()); got != expected {
		t.Errorf("unexpected will:\ngot:  %s\nwant: %s", got, expected)
	}
}

func TestFormatResponse(t *testing.T) {
	at := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

	payload, err := FormatResponse(Response{
		Timestamp: at,
		Frame:     []byte{0x04, 0, 0, 0, 0},
		Data:      []byte{0x07, 0, 0, 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `{"response":{"timestamp":"2026-03-08T12:00:00Z","opcode":"0x04","frame":"0400000000","ok":true,"data":"07000000"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}

	payload, _ = FormatResponse(Response{Timestamp: at, Frame: []byte{0x0B}, Err: errors.New("unknown opcode")})
	var parsed ResponsePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Response.OK || parsed.Response.Error != "unknown opcode" || parsed.Response.Data != "" {
		t.Errorf("error response: got %+v", parsed.Response)
	}
}

func TestFakePublisher(t *testing.T) {
	fake := NewFakePublisher()
	at := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

	if err := fake.PublishTelemetry(passivationSnapshot(), at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.TelemetryCount() != 1 || len(fake.TelemetryPayloads) != 1 {
		t.Fatalf("expected 1 telemetry message, got %d", fake.TelemetryCount())
	}
	if fake.Telemetry[0].State != sequencer.PassivationSequence {
		t.Errorf("state: got %s", fake.Telemetry[0].State)
	}

	fake.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true})
	if len(fake.SystemEvents) != 1 || !fake.SystemEvents[0].Retained {
		t.Errorf("system events: got %+v", fake.SystemEvents)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	fake := NewFakePublisher()
	fake.PublishError = errors.New("broker down")
	fake.PublishSystemError = errors.New("broker down")

	if err := fake.PublishTelemetry(sequencer.Snapshot{}, time.Now()); err == nil {
		t.Error("expected telemetry error")
	}
	if err := fake.PublishSystem(SystemEvent{Event: "SHUTDOWN"}); err == nil {
		t.Error("expected system error")
	}
	if fake.TelemetryCount() != 0 || len(fake.SystemEvents) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

func TestFakePublisherDeliver(t *testing.T) {
	fake := NewFakePublisher()
	fake.Deliver([]byte{0x11}) // no handler yet

	var got [][]byte
	fake.OnCommand(func(frame []byte) { got = append(got, frame) })
	fake.Deliver([]byte{0x0F, 0xAC})

	if len(got) != 1 || got[0][0] != 0x0F {
		t.Errorf("handler calls: got %v", got)
	}
}

func TestFakePublisherReset(t *testing.T) {
	fake := NewFakePublisher()
	fake.PublishTelemetry(sequencer.Snapshot{}, time.Now())
	fake.PublishSystem(SystemEvent{Event: "STARTUP"})
	fake.PublishResponse(Response{Frame: []byte{0x04}})
	fake.Close()
	fake.Connected = true

	fake.Reset()

	if fake.TelemetryCount() != 0 || len(fake.SystemEvents) != 0 || len(fake.Responses) != 0 {
		t.Error("Reset should clear recorded messages")
	}
	if fake.Closed || fake.Connected {
		t.Error("Reset should clear flags")
	}
}
