// Package gateway implements the host command/telemetry register map of the
// prop board. Host frames are parsed into sequencer commands and handed to
// the control loop through a bounded queue; responses are served from the
// latest snapshot the loop published.
package gateway

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sweeney/prb-computer/internal/sequencer"
)

// ErrQueueFull is returned when a command arrives while the queue is full.
var ErrQueueFull = errors.New("command queue full")

// DefaultQueueDepth is the command queue capacity.
const DefaultQueueDepth = 16

// Source provides the most recent published sequencer snapshot.
type Source interface {
	Latest() sequencer.Snapshot
}

// Gateway is safe for concurrent use by several transports.
type Gateway struct {
	src    Source
	queue  chan sequencer.Command
	mu     sync.Mutex
	last   Opcode
	counts Counts
}

// Counts tallies frames seen by the gateway.
type Counts struct {
	Frames   int
	Queued   int
	Dropped  int
	Rejected int
}

// New creates a Gateway with a queue of the given depth.
func New(src Source, depth int) *Gateway {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	return &Gateway{
		src:   src,
		queue: make(chan sequencer.Command, depth),
		last:  OpFsmState,
	}
}

// Commands returns the queue drained by the control loop.
func (g *Gateway) Commands() <-chan sequencer.Command {
	return g.queue
}

// Submit enqueues cmd without blocking.
func (g *Gateway) Submit(cmd sequencer.Command) error {
	select {
	case g.queue <- cmd:
		g.mu.Lock()
		g.counts.Queued++
		g.mu.Unlock()
		return nil
	default:
		g.mu.Lock()
		g.counts.Dropped++
		g.mu.Unlock()
		log.Printf("gateway: dropped command %s: queue full", cmd)
		return fmt.Errorf("submit %s: %w", cmd, ErrQueueFull)
	}
}

// Receive handles a host write: it records the opcode as the register for
// the next Request and enqueues the command it carries, if any.
func (g *Gateway) Receive(frame []byte) error {
	op, cmd, err := Parse(frame)

	g.mu.Lock()
	g.counts.Frames++
	if err != nil {
		g.counts.Rejected++
	} else {
		g.last = op
	}
	g.mu.Unlock()

	if err != nil {
		return err
	}
	if cmd == nil {
		return nil
	}
	return g.Submit(*cmd)
}

// Request handles a host read of the last received register.
func (g *Gateway) Request() ([PayloadSize]byte, bool) {
	g.mu.Lock()
	op := g.last
	g.mu.Unlock()
	return Encode(op, g.src.Latest())
}

// Exchange is Receive followed by Request. ok is false when the frame was
// rejected or its register has no response.
func (g *Gateway) Exchange(frame []byte) (resp [PayloadSize]byte, ok bool, err error) {
	if err = g.Receive(frame); err != nil {
		return resp, false, err
	}
	if !Opcode(frame[0]).Readable() {
		return resp, false, nil
	}
	resp, ok = g.Request()
	return resp, ok, nil
}

// Counts returns a copy of the frame counters.
func (g *Gateway) Counts() Counts {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts
}
