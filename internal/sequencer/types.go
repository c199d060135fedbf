package sequencer

import (
	"fmt"
	"time"

	"github.com/sweeney/prb-computer/internal/impulse"
	"github.com/sweeney/prb-computer/internal/indicator"
	"github.com/sweeney/prb-computer/internal/sensor"
	"github.com/sweeney/prb-computer/internal/valve"
)

// SystemState is the top-level state. The integer values are the FsmState
// codes reported to the host.
type SystemState int

const (
	Idle SystemState = iota
	Wakeup
	Test
	Setup
	Wait
	ClearToIgnite
	IgnitionSequence
	PassivationSequence
	Abort
	Error
)

var systemStateNames = [...]string{
	Idle:                "IDLE",
	Wakeup:              "WAKEUP",
	Test:                "TEST",
	Setup:               "SETUP",
	Wait:                "WAIT",
	ClearToIgnite:       "CLEAR_TO_IGNITE",
	IgnitionSequence:    "IGNITION_SEQUENCE",
	PassivationSequence: "PASSIVATION_SEQUENCE",
	Abort:               "ABORT",
	Error:               "ERROR",
}

func (s SystemState) String() string {
	if s >= 0 && int(s) < len(systemStateNames) {
		return systemStateNames[s]
	}
	return fmt.Sprintf("STATE(%d)", int(s))
}

// IgnitionStage is the sub-phase of IgnitionSequence. NoGo is the inactive sentinel.
type IgnitionStage int

const (
	PreChill IgnitionStage = iota
	Ignition
	BurnStartMainEngine
	BurnStartOxidizer
	PressureCheck
	Burn
	BurnStopOxidizer
	BurnStopMainEngine
	WaitForPassivation
	NoGo
)

var ignitionStageNames = [...]string{
	PreChill:            "PRE_CHILL",
	Ignition:            "IGNITION",
	BurnStartMainEngine: "BURN_START_ME",
	BurnStartOxidizer:   "BURN_START_MO",
	PressureCheck:       "PRESSURE_CHECK",
	Burn:                "BURN",
	BurnStopOxidizer:    "BURN_STOP_MO",
	BurnStopMainEngine:  "BURN_STOP_ME",
	WaitForPassivation:  "WAIT_FOR_PASSIVATION",
	NoGo:                "NOGO",
}

func (s IgnitionStage) String() string {
	if s >= 0 && int(s) < len(ignitionStageNames) {
		return ignitionStageNames[s]
	}
	return fmt.Sprintf("IGNITION(%d)", int(s))
}

// PassivationStage is the sub-phase of PassivationSequence. Sleep is the
// inactive sentinel. The Vent stages are used by the vent shutdown shape.
type PassivationStage int

const (
	Sleep PassivationStage = iota
	PassivationFuel
	PassivationOxidizer
	Shutoff
	VentCloseOxidizer
	VentCloseMainEngine
	VentOpenOxidizer
	VentOpenMainEngine
)

var passivationStageNames = [...]string{
	Sleep:               "SLEEP",
	PassivationFuel:     "PASSIVATION_FUEL",
	PassivationOxidizer: "PASSIVATION_OX",
	Shutoff:             "SHUTOFF",
	VentCloseOxidizer:   "VENT_CLOSE_MO",
	VentCloseMainEngine: "VENT_CLOSE_ME",
	VentOpenOxidizer:    "VENT_OPEN_MO",
	VentOpenMainEngine:  "VENT_OPEN_ME",
}

func (s PassivationStage) String() string {
	if s >= 0 && int(s) < len(passivationStageNames) {
		return passivationStageNames[s]
	}
	return fmt.Sprintf("PASSIVATION(%d)", int(s))
}

// AbortStage is the sub-phase of Abort. AbortInactive is the inactive sentinel.
type AbortStage int

const (
	AbortOxidizer AbortStage = iota
	AbortFuel
	WaitForPassivationAbort
	AbortInactive
)

var abortStageNames = [...]string{
	AbortOxidizer:           "ABORT_OX",
	AbortFuel:               "ABORT_FUEL",
	WaitForPassivationAbort: "WAIT_FOR_PASSIVATION_ABORT",
	AbortInactive:           "INACTIVE",
}

func (s AbortStage) String() string {
	if s >= 0 && int(s) < len(abortStageNames) {
		return abortStageNames[s]
	}
	return fmt.Sprintf("ABORT(%d)", int(s))
}

// Memory is the sequencer's working record. Timestamps are zero until first set.
type Memory struct {
	TimeIgnition    time.Time
	TimePassivation time.Time
	TimeAbort       time.Time
	TimeLED         time.Time
	TimePrint       time.Time
	TimeSensorPoll  time.Time

	Valves valve.States
	LEDOn  bool

	Readings sensor.Readings

	// Chamber-pressure window by slot, and the next slot to write.
	Window      [sensor.WindowSize]float64
	WindowIndex int

	Burn impulse.State

	// PassivationRequested distinguishes an abort that hands off to
	// passivation from a hard abort.
	PassivationRequested bool
	// Vent is set while the running passivation uses the vent shape.
	Vent bool

	HostTimestamp uint32
	WokenUp       bool

	// SensorBusOff is set while the sensor bus is held in reset. Readings
	// are not refreshed and keep their last values.
	SensorBusOff bool
}

// Snapshot is a point-in-time copy of the sequencer.
// It is a value type, safe to use from another goroutine.
type Snapshot struct {
	State       SystemState
	Ignition    IgnitionStage
	Passivation PassivationStage
	Abort       AbortStage
	Color       indicator.Color
	Memory      Memory
}
