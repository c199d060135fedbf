package gateway

import "fmt"

// Opcode is the register byte that starts every host frame.
type Opcode byte

const (
	OpTimestamp       Opcode = 0x00 // -W
	OpWakeUp          Opcode = 0x01 // -W
	OpIsWokenUp       Opcode = 0x02 // R-
	OpClearToIgnite   Opcode = 0x03 // -W
	OpFsmState        Opcode = 0x04 // R-
	OpOxidizerInletP  Opcode = 0x05 // R-
	OpOxidizerInletT  Opcode = 0x06 // R-
	OpEngineInletP    Opcode = 0x07 // R-
	OpEngineInletT    Opcode = 0x08 // R-
	OpChamberP        Opcode = 0x09 // R-
	OpChamberT        Opcode = 0x0A // R-
	OpValvesState     Opcode = 0x0D // R/W
	OpIgniter         Opcode = 0x0E // -W
	OpAbort           Opcode = 0x0F // -W
	OpPassivate       Opcode = 0x10 // -W
	OpReset           Opcode = 0x11 // -W
	OpSpecificImpulse Opcode = 0x12 // R-
)

// Boolean payload bytes.
const (
	On  byte = 0xAC
	Off byte = 0xDE
)

const (
	// PayloadSize is the fixed transfer size of every payload and response.
	PayloadSize = 4
	// FrameSize is one opcode byte plus a payload.
	FrameSize = 1 + PayloadSize
)

var opcodeNames = map[Opcode]string{
	OpTimestamp:       "TIMESTAMP_MAIN",
	OpWakeUp:          "WAKE_UP",
	OpIsWokenUp:       "IS_WOKEN_UP",
	OpClearToIgnite:   "CLEAR_TO_IGNITE",
	OpFsmState:        "FSM_PRB",
	OpOxidizerInletP:  "P_OIN",
	OpOxidizerInletT:  "T_OIN",
	OpEngineInletP:    "P_EIN",
	OpEngineInletT:    "T_EIN",
	OpChamberP:        "P_CCC",
	OpChamberT:        "T_CCC",
	OpValvesState:     "VALVES_STATE",
	OpIgniter:         "IGNITER",
	OpAbort:           "ABORT",
	OpPassivate:       "PASSIVATE",
	OpReset:           "RESET",
	OpSpecificImpulse: "SPECIFIC_IMPULSE",
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return fmt.Sprintf("OPCODE(0x%02X)", byte(o))
}

// Known reports whether o is part of the register map.
func (o Opcode) Known() bool {
	_, ok := opcodeNames[o]
	return ok
}

// Readable reports whether o has a response.
func (o Opcode) Readable() bool {
	switch o {
	case OpIsWokenUp, OpFsmState,
		OpOxidizerInletP, OpOxidizerInletT, OpEngineInletP, OpEngineInletT, OpChamberP, OpChamberT,
		OpValvesState, OpSpecificImpulse:
		return true
	}
	return false
}
