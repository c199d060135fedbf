package sequencer

import (
	"time"

	"github.com/sweeney/prb-computer/internal/valve"
)

func (s *Sequencer) passivationTick(now time.Time) {
	elapsed := now.Sub(s.mem.TimePassivation)

	switch s.passivation {
	case PassivationFuel:
		if !s.cfg.ColdFlow {
			s.valves.Open(valve.MainEngine)
		}
		s.passivation = PassivationOxidizer
		s.mem.TimePassivation = now

	case PassivationOxidizer:
		if elapsed >= s.cfg.PassivationFuel {
			s.valves.Close(valve.MainEngine)
			s.valves.Open(valve.Oxidizer)
			s.passivation = Shutoff
			s.mem.TimePassivation = now
		}

	case VentCloseOxidizer:
		s.valves.Close(valve.Oxidizer)
		s.passivation = VentCloseMainEngine
		s.mem.TimePassivation = now

	case VentCloseMainEngine:
		if elapsed >= s.cfg.Cutoff {
			s.valves.Close(valve.MainEngine)
			s.passivation = VentOpenOxidizer
			s.mem.TimePassivation = now
		}

	case VentOpenOxidizer:
		if elapsed >= s.cfg.Cutoff {
			s.valves.Open(valve.Oxidizer)
			s.passivation = VentOpenMainEngine
			s.mem.TimePassivation = now
		}

	case VentOpenMainEngine:
		if elapsed >= s.cfg.PassivationOxidizer {
			s.valves.Open(valve.MainEngine)
			s.passivation = Shutoff
			s.mem.TimePassivation = now
		}

	case Shutoff:
		if s.mem.Vent {
			// Vent leaves both lines open.
			if elapsed >= s.cfg.PassivationFuel {
				s.finishPassivation()
			}
			break
		}
		if elapsed >= s.cfg.PassivationOxidizer {
			s.valves.Close(valve.Oxidizer)
			s.finishPassivation()
		}

	case Sleep:
		s.finishPassivation()
	}
}

func (s *Sequencer) finishPassivation() {
	s.passivation = Sleep
	s.mem.PassivationRequested = false
	s.mem.Vent = false
	s.setState(Idle)
}
