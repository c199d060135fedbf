package sequencer

import (
	"fmt"
	"log"
	"time"

	"github.com/sweeney/prb-computer/internal/valve"
)

// CommandKind identifies an inbound host command.
type CommandKind int

const (
	CmdTimestamp CommandKind = iota
	CmdWakeUp
	CmdClearToIgnite
	CmdReset
	CmdValves
	CmdIgniter
	CmdAbort
	CmdPassivate
)

var commandNames = [...]string{
	CmdTimestamp:     "TIMESTAMP",
	CmdWakeUp:        "WAKE_UP",
	CmdClearToIgnite: "CLEAR_TO_IGNITE",
	CmdReset:         "RESET",
	CmdValves:        "VALVES",
	CmdIgniter:       "IGNITER",
	CmdAbort:         "ABORT",
	CmdPassivate:     "PASSIVATE",
}

func (k CommandKind) String() string {
	if k >= 0 && int(k) < len(commandNames) {
		return commandNames[k]
	}
	return fmt.Sprintf("COMMAND(%d)", int(k))
}

// Command is a parsed host command.
type Command struct {
	Kind CommandKind

	// On is the boolean argument of WakeUp, ClearToIgnite and Igniter, and
	// the passivation-requested flag of Abort.
	On bool

	// Valve targets for CmdValves. true = open.
	MainEngine bool
	Oxidizer   bool

	// Timestamp carries the host clock for CmdTimestamp.
	Timestamp uint32
}

func (c Command) String() string {
	switch c.Kind {
	case CmdTimestamp:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Timestamp)
	case CmdValves:
		return fmt.Sprintf("%s(me=%v mo=%v)", c.Kind, c.MainEngine, c.Oxidizer)
	case CmdReset, CmdPassivate:
		return c.Kind.String()
	}
	return fmt.Sprintf("%s(%v)", c.Kind, c.On)
}

// Apply executes cmd against the current state and reports whether it was
// accepted. Commands that do not fit the current state are dropped.
func (s *Sequencer) Apply(cmd Command, now time.Time) bool {
	ok := s.apply(cmd, now)
	if !ok {
		log.Printf("sequencer: ignored %s in %s", cmd, s.state)
	}
	s.syncMemory()
	return ok
}

func (s *Sequencer) apply(cmd Command, now time.Time) bool {
	if s.state == Error {
		return false
	}

	switch cmd.Kind {
	case CmdTimestamp:
		s.mem.HostTimestamp = cmd.Timestamp
		return true

	case CmdWakeUp:
		s.mem.WokenUp = cmd.On
		return true

	case CmdClearToIgnite:
		if cmd.On && s.state == Idle {
			s.setState(ClearToIgnite)
			return true
		}
		if !cmd.On && s.state == ClearToIgnite {
			s.setState(Idle)
			return true
		}
		return false

	case CmdIgniter:
		if !cmd.On || s.state != ClearToIgnite {
			return false
		}
		s.ignite(now)
		return true

	case CmdAbort:
		s.enterAbort(now, cmd.On)
		return true

	case CmdPassivate:
		if s.state != IgnitionSequence {
			return false
		}
		s.burn.Stop()
		s.valves.Close(valve.Oxidizer)
		s.valves.Close(valve.Igniter)
		s.startPassivation(now, s.ventShutdown())
		return true

	case CmdValves:
		switch s.state {
		case IgnitionSequence, PassivationSequence, Abort:
			return false
		}
		setValve(s.valves, valve.MainEngine, cmd.MainEngine)
		setValve(s.valves, valve.Oxidizer, cmd.Oxidizer)
		return true

	case CmdReset:
		s.reset()
		return true
	}
	return false
}

func (s *Sequencer) reset() {
	s.burn.Stop()
	s.burn.Reset()
	s.window.Reset()
	s.valves.CloseAll()
	s.setState(Idle)
	s.ignition = NoGo
	s.passivation = Sleep
	s.abort = AbortInactive
	s.mem.PassivationRequested = false
	s.mem.Vent = false
}

func setValve(b *valve.Bank, v valve.Valve, open bool) {
	if open {
		b.Open(v)
	} else {
		b.Close(v)
	}
}
