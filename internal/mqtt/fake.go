package mqtt

import (
	"sync"
	"time"

	"github.com/sweeney/prb-computer/internal/sequencer"
)

// FakePublisher records published messages for test assertions.
// It is safe for concurrent use.
type FakePublisher struct {
	mu sync.Mutex

	// Telemetry contains all snapshots that were published.
	Telemetry []sequencer.Snapshot

	// TelemetryPayloads contains the JSON payloads for telemetry.
	TelemetryPayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// Responses contains all command replies that were published.
	Responses []Response

	// PublishError, if set, will be returned by PublishTelemetry.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// handler is invoked by Deliver.
	handler CommandHandler
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// OnCommand registers the handler that Deliver feeds.
func (f *FakePublisher) OnCommand(h CommandHandler) {
	f.mu.Lock()
	f.handler = h
	f.mu.Unlock()
}

// Deliver simulates a message arriving on TopicCommand.
func (f *FakePublisher) Deliver(frame []byte) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(frame)
	}
}

// PublishTelemetry records the snapshot.
func (f *FakePublisher) PublishTelemetry(snap sequencer.Snapshot, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatTelemetry(snap, at)
	if err != nil {
		return err
	}
	f.Telemetry = append(f.Telemetry, snap)
	f.TelemetryPayloads = append(f.TelemetryPayloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// PublishResponse records the reply.
func (f *FakePublisher) PublishResponse(resp Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses = append(f.Responses, resp)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// TelemetryCount returns the number of telemetry messages recorded.
func (f *FakePublisher) TelemetryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Telemetry)
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Telemetry = nil
	f.TelemetryPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Responses = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
