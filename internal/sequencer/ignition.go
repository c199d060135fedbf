package sequencer

import (
	"log"
	"time"

	"github.com/sweeney/prb-computer/internal/valve"
)

// ignite starts a fresh ignition cycle.
func (s *Sequencer) ignite(now time.Time) {
	s.valves.CloseAll()
	s.window.Reset()
	s.burn.Reset()
	s.setState(IgnitionSequence)
	s.ignition = PreChill
	s.passivation = Sleep
	s.abort = AbortInactive
	s.mem.TimeIgnition = now
	s.mem.PassivationRequested = false
}

func (s *Sequencer) ignitionTick(now time.Time) {
	elapsed := now.Sub(s.mem.TimeIgnition)

	switch s.ignition {
	case PreChill:
		s.valves.Open(valve.Oxidizer)
		s.ignition = Ignition
		s.mem.TimeIgnition = now

	case Ignition:
		if elapsed >= s.cfg.Prechill {
			s.valves.Close(valve.Oxidizer)
			s.valves.Open(valve.Igniter)
			s.ignition = BurnStartMainEngine
			s.mem.TimeIgnition = now
		}

	case BurnStartMainEngine:
		if elapsed >= s.cfg.Igniter {
			s.valves.Open(valve.MainEngine)
			s.valves.Close(valve.Igniter)
			s.ignition = BurnStartOxidizer
			s.mem.TimeIgnition = now
		}

	case BurnStartOxidizer:
		if elapsed >= s.cfg.IgnitionDelay {
			s.valves.Open(valve.Oxidizer)
			s.ignition = PressureCheck
			s.mem.TimeIgnition = now
		}

	case PressureCheck:
		mean := s.window.Push(s.mem.Readings.ChamberPressure)
		if elapsed < s.cfg.Rampup {
			break
		}
		if mean >= s.cfg.RampUpThreshold {
			s.ignition = Burn
			s.mem.TimeIgnition = now
			s.burn.Begin(now)
			break
		}
		log.Printf("sequencer: ramp-up gate failed: mean chamber pressure %.2f bar < %.2f bar", mean, s.cfg.RampUpThreshold)
		s.valves.Close(valve.Oxidizer)
		s.valves.Close(valve.Igniter)
		s.valves.Close(valve.MainEngine)
		s.enterAbort(now, s.cfg.PassivateOnGateFailure)

	case Burn:
		if s.burn.Step(now, s.mem.Readings.ChamberPressure) {
			s.burn.Stop()
			s.valves.Close(valve.Oxidizer)
			s.ignition = BurnStopOxidizer
			s.mem.TimeIgnition = now
		}

	case BurnStopOxidizer:
		// The oxidizer was closed when the burn ended; the cutoff delay
		// for the main engine runs from that instant.
		s.valves.Close(valve.Oxidizer)
		s.ignition = BurnStopMainEngine

	case BurnStopMainEngine:
		if elapsed >= s.cfg.Cutoff {
			s.valves.Close(valve.MainEngine)
			s.ignition = WaitForPassivation
			s.mem.TimeIgnition = now
		}

	case WaitForPassivation:
		if elapsed >= s.cfg.PassivationDelay {
			s.startPassivation(now, s.ventShutdown())
		}
	}
}
