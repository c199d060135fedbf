package sequencer

import (
	"time"

	"github.com/sweeney/prb-computer/internal/valve"
)

func (s *Sequencer) abortTick(now time.Time) {
	elapsed := now.Sub(s.mem.TimeAbort)

	switch s.abort {
	case AbortOxidizer:
		s.valves.Close(valve.Oxidizer)
		s.valves.Close(valve.Igniter)
		s.abort = AbortFuel
		s.mem.TimeAbort = now

	case AbortFuel:
		if elapsed >= s.cfg.Cutoff {
			s.valves.Close(valve.MainEngine)
			s.abort = WaitForPassivationAbort
			s.mem.TimeAbort = now
		}

	case WaitForPassivationAbort:
		if elapsed < s.cfg.AbortPassivationDelay {
			break
		}
		if s.mem.PassivationRequested {
			s.startPassivation(now, false)
			break
		}
		s.abort = AbortInactive
		s.setState(Idle)

	case AbortInactive:
		s.setState(Idle)
	}
}
