// Package sequencer implements the test-bench state machines: the top-level
// system state and the ignition, passivation and abort sequences that drive
// the valves from elapsed time and cached sensor values.
//
// A Sequencer is not safe for concurrent use. One goroutine calls Apply and
// Update; other goroutines read Snapshot values published by that goroutine.
package sequencer

import (
	"log"
	"time"

	"github.com/sweeney/prb-computer/internal/impulse"
	"github.com/sweeney/prb-computer/internal/indicator"
	"github.com/sweeney/prb-computer/internal/sensor"
	"github.com/sweeney/prb-computer/internal/valve"
)

// Sensors refreshes cached readings. Channels that fail keep their value from prev.
type Sensors interface {
	Refresh(prev sensor.Readings) sensor.Readings
}

// BusGate is implemented by Sensors whose bus can be held in reset.
type BusGate interface {
	DisableBus() error
	EnableBus() error
}

// Indicator shows a status colour.
type Indicator interface {
	Show(c indicator.Color)
}

// Sequencer owns the system state, the three sub-sequences and Memory.
type Sequencer struct {
	cfg     Config
	valves  *valve.Bank
	sensors Sensors
	gate    BusGate
	led     Indicator
	burn    impulse.Burn
	window  *sensor.PressureWindow

	state       SystemState
	ignition    IgnitionStage
	passivation PassivationStage
	abort       AbortStage
	color       indicator.Color

	mem Memory
}

// New creates a Sequencer in Idle with every valve closed. If sensors is
// also a BusGate, the sensor bus is held in reset while an abort or a
// passivation runs.
func New(cfg Config, valves *valve.Bank, sensors Sensors, led Indicator, burn impulse.Burn) *Sequencer {
	gate, _ := sensors.(BusGate)
	s := &Sequencer{
		gate:        gate,
		cfg:         cfg,
		valves:      valves,
		sensors:     sensors,
		led:         led,
		burn:        burn,
		window:      sensor.NewPressureWindow(),
		state:       Idle,
		ignition:    NoGo,
		passivation: Sleep,
		abort:       AbortInactive,
	}
	s.valves.CloseAll()
	s.syncMemory()
	return s
}

// Update advances the active sequence by one tick, then refreshes sensors
// and prints telemetry when their intervals have elapsed. Sensors are not
// refreshed while the bus is held in reset.
func (s *Sequencer) Update(now time.Time) {
	switch s.state {
	case Idle:
		s.blink(now, indicator.Teal)
	case ClearToIgnite:
		s.blink(now, indicator.Orange)
	case IgnitionSequence:
		s.ignitionTick(now)
		s.show(s.stageColor())
	case PassivationSequence:
		s.passivationTick(now)
		s.show(s.stageColor())
	case Abort:
		s.abortTick(now)
		s.show(s.stageColor())
	case Error:
		s.show(indicator.Red)
	}

	s.gateBus(s.state == Abort || s.state == PassivationSequence)

	if !s.mem.SensorBusOff && now.Sub(s.mem.TimeSensorPoll) >= s.cfg.SensorPoll {
		s.mem.Readings = s.sensors.Refresh(s.mem.Readings)
		s.mem.TimeSensorPoll = now
	}

	if s.cfg.Debug && now.Sub(s.mem.TimePrint) >= s.cfg.PrintInterval {
		s.print()
		s.mem.TimePrint = now
	}

	s.syncMemory()
}

// State returns the current system state.
func (s *Sequencer) State() SystemState {
	return s.state
}

// Snapshot returns a copy of the full sequencer state.
func (s *Sequencer) Snapshot() Snapshot {
	return Snapshot{
		State:       s.state,
		Ignition:    s.ignition,
		Passivation: s.passivation,
		Abort:       s.abort,
		Color:       s.color,
		Memory:      s.mem,
	}
}

// Close closes every valve and marks the sequencer unusable.
func (s *Sequencer) Close() {
	s.burn.Stop()
	s.valves.CloseAll()
	s.state = Error
	s.ignition = NoGo
	s.passivation = Sleep
	s.abort = AbortInactive
	s.show(indicator.Red)
	s.syncMemory()
	log.Printf("sequencer: closed, all valves closed")
}

func (s *Sequencer) syncMemory() {
	s.mem.Valves = s.valves.States()
	s.mem.Window = s.window.Slots()
	s.mem.WindowIndex = s.window.Index()
	s.mem.Burn = s.burn.State()
}

// gateBus holds the sensor bus in reset when off is set and releases it
// otherwise. A failed switch is retried on the next tick.
func (s *Sequencer) gateBus(off bool) {
	if s.gate == nil || off == s.mem.SensorBusOff {
		return
	}
	var err error
	if off {
		err = s.gate.DisableBus()
	} else {
		err = s.gate.EnableBus()
	}
	if err != nil {
		log.Printf("sequencer: sensor bus gate: %v", err)
		return
	}
	s.mem.SensorBusOff = off
}

func (s *Sequencer) blink(now time.Time, c indicator.Color) {
	if now.Sub(s.mem.TimeLED) < s.cfg.LEDBlink {
		return
	}
	s.mem.TimeLED = now
	s.mem.LEDOn = !s.mem.LEDOn
	if s.mem.LEDOn {
		s.show(c)
	} else {
		s.show(indicator.Off)
	}
}

func (s *Sequencer) show(c indicator.Color) {
	s.color = c
	if s.led != nil {
		s.led.Show(c)
	}
}

// stageColor maps the active sub-stage to the indicator palette. The palette
// has fewer colours than there are sub-stages, so stages share a colour per
// family: WHITE while chilling and igniting, GREEN during the burn, BLUE for
// the other ignition stages, PURPLE for every passivation stage and RED for
// every abort stage.
func (s *Sequencer) stageColor() indicator.Color {
	switch s.state {
	case IgnitionSequence:
		switch s.ignition {
		case PreChill, Ignition:
			return indicator.White
		case Burn:
			return indicator.Green
		}
		return indicator.Blue
	case PassivationSequence:
		return indicator.Purple
	case Abort:
		return indicator.Red
	case ClearToIgnite:
		return indicator.Orange
	}
	return indicator.Teal
}

func (s *Sequencer) print() {
	r := s.mem.Readings
	log.Printf("state=%s ignition=%s passivation=%s abort=%s", s.state, s.ignition, s.passivation, s.abort)
	log.Printf("EIN T=%.2f (PT1000 %.2f) P=%.2f | CCC T=%.2f P=%.2f | OIN T=%.2f P=%.2f | impulse=%.1f",
		r.EngineInletTemperatureDigital, r.EngineInletTemperature, r.EngineInletPressure,
		r.ChamberTemperature, r.ChamberPressure,
		r.OxidizerInletTemperature, r.OxidizerInletPressure,
		s.mem.Burn.TotalImpulse)
}

func (s *Sequencer) setState(next SystemState) {
	if next != s.state {
		log.Printf("sequencer: %s -> %s", s.state, next)
	}
	s.state = next
}

// startPassivation enters PassivationSequence. vent selects the vent shape.
func (s *Sequencer) startPassivation(now time.Time, vent bool) {
	s.setState(PassivationSequence)
	s.ignition = NoGo
	s.abort = AbortInactive
	s.mem.TimePassivation = now
	s.mem.Vent = vent
	if vent {
		s.passivation = VentCloseOxidizer
	} else {
		s.passivation = PassivationFuel
	}
}

// enterAbort starts the abort sequence from any state.
func (s *Sequencer) enterAbort(now time.Time, passivate bool) {
	s.burn.Stop()
	s.setState(Abort)
	s.abort = AbortOxidizer
	s.ignition = NoGo
	s.passivation = Sleep
	s.mem.TimeAbort = now
	s.mem.PassivationRequested = passivate
}

func (s *Sequencer) ventShutdown() bool {
	return s.cfg.Shutdown == ShutdownVent
}
