// Package mqtt carries bench telemetry, lifecycle events and host commands
// over MQTT, with abstraction for testing.
package mqtt

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/prb-computer/internal/sequencer"
	"github.com/sweeney/prb-computer/internal/status"
)

const (
	// TopicTelemetry carries periodic sequencer snapshots.
	TopicTelemetry = "prb/bench/telemetry"
	// TopicSystem carries lifecycle events (STARTUP, SHUTDOWN, OFFLINE).
	TopicSystem = "prb/bench/system"
	// TopicCommand accepts raw gateway frames from the host.
	TopicCommand = "prb/bench/command"
	// TopicResponse carries the reply to each command frame.
	TopicResponse = "prb/bench/response"
)

// Publisher publishes bench messages to MQTT.
type Publisher interface {
	// PublishTelemetry sends a sequencer snapshot.
	// Returns error if publishing fails (should not crash the process).
	PublishTelemetry(snap sequencer.Snapshot, at time.Time) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// PublishResponse answers a frame received on TopicCommand.
	PublishResponse(resp Response) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandHandler receives the payload of every TopicCommand message.
type CommandHandler func(frame []byte)

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "OFFLINE"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Response is the reply to one command frame.
type Response struct {
	Timestamp time.Time
	Frame     []byte
	Data      []byte // register value; nil for write-only opcodes
	Err       error
}

// TelemetryPayload is the JSON body published on TopicTelemetry.
type TelemetryPayload struct {
	Timestamp string           `json:"timestamp"`
	Bench     status.BenchJSON `json:"bench"`
}

// FormatTelemetry creates the JSON payload for a sequencer snapshot.
func FormatTelemetry(snap sequencer.Snapshot, at time.Time) ([]byte, error) {
	return json.Marshal(TelemetryPayload{
		Timestamp: at.UTC().Format(time.RFC3339Nano),
		Bench:     status.Bench(snap),
	})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}

// ResponsePayload is the JSON body published on TopicResponse.
type ResponsePayload struct {
	Response ResponseInner `json:"response"`
}

// ResponseInner contains the reply details. Frame and Data are hex encoded.
type ResponseInner struct {
	Timestamp string `json:"timestamp"`
	Opcode    string `json:"opcode"`
	Frame     string `json:"frame"`
	OK        bool   `json:"ok"`
	Data      string `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FormatResponse creates the JSON payload for a command reply.
func FormatResponse(resp Response) ([]byte, error) {
	inner := ResponseInner{
		Timestamp: resp.Timestamp.UTC().Format(time.RFC3339Nano),
		Frame:     hex.EncodeToString(resp.Frame),
		OK:        resp.Err == nil,
	}
	if len(resp.Frame) > 0 {
		inner.Opcode = fmt.Sprintf("0x%02X", resp.Frame[0])
	}
	if resp.Data != nil {
		inner.Data = hex.EncodeToString(resp.Data)
	}
	if resp.Err != nil {
		inner.Error = resp.Err.Error()
	}
	return json.Marshal(ResponsePayload{Response: inner})
}

// willPayload is the retained last-will message announcing an unclean disconnect.
func willPayload() []byte {
	data, _ := FormatSystemPayload(SystemEvent{Event: "OFFLINE", Reason: "LWT"})
	return data
}
