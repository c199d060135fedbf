package gateway

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/sweeney/prb-computer/internal/sensor"
	"github.com/sweeney/prb-computer/internal/sequencer"
)

var (
	ErrEmptyFrame    = errors.New("empty frame")
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrBadPayload    = errors.New("bad payload")
)

// Parse decodes a host frame. The command is nil for read-only opcodes and
// for a ValvesState frame whose first payload byte is not a flag, which only
// selects the register.
func Parse(frame []byte) (Opcode, *sequencer.Command, error) {
	if len(frame) == 0 {
		return 0, nil, ErrEmptyFrame
	}
	op := Opcode(frame[0])
	if !op.Known() {
		return op, nil, fmt.Errorf("parse 0x%02X: %w", frame[0], ErrUnknownOpcode)
	}

	var p [PayloadSize]byte
	n := copy(p[:], frame[1:])

	flag := func() (bool, error) {
		switch p[0] {
		case On:
			return true, nil
		case Off:
			return false, nil
		}
		return false, fmt.Errorf("parse %s: 0x%02X: %w", op, p[0], ErrBadPayload)
	}

	var cmd sequencer.Command
	switch op {
	case OpTimestamp:
		cmd = sequencer.Command{Kind: sequencer.CmdTimestamp, Timestamp: binary.LittleEndian.Uint32(p[:])}

	case OpWakeUp, OpClearToIgnite, OpIgniter, OpAbort:
		on, err := flag()
		if err != nil {
			return op, nil, err
		}
		cmd = sequencer.Command{Kind: flagKinds[op], On: on}

	case OpValvesState:
		me, mo := p[0], p[1]
		if n == 0 || (me != On && me != Off) {
			return op, nil, nil
		}
		if mo != On && mo != Off {
			return op, nil, fmt.Errorf("parse %s: %02X %02X: %w", op, me, mo, ErrBadPayload)
		}
		cmd = sequencer.Command{Kind: sequencer.CmdValves, MainEngine: me == On, Oxidizer: mo == On}

	case OpPassivate:
		cmd = sequencer.Command{Kind: sequencer.CmdPassivate}

	case OpReset:
		cmd = sequencer.Command{Kind: sequencer.CmdReset}

	default:
		return op, nil, nil
	}
	return op, &cmd, nil
}

var flagKinds = map[Opcode]sequencer.CommandKind{
	OpWakeUp:        sequencer.CmdWakeUp,
	OpClearToIgnite: sequencer.CmdClearToIgnite,
	OpIgniter:       sequencer.CmdIgniter,
	OpAbort:         sequencer.CmdAbort,
}

var readChannels = map[Opcode]sensor.Channel{
	OpOxidizerInletP: sensor.OxidizerInletPressure,
	OpOxidizerInletT: sensor.OxidizerInletTemperature,
	OpEngineInletP:   sensor.EngineInletPressure,
	OpEngineInletT:   sensor.EngineInletTemperature,
	OpChamberP:       sensor.ChamberPressure,
	OpChamberT:       sensor.ChamberTemperature,
}

// Encode builds the 4-byte response for op from snap. ok is false when op
// has no response.
func Encode(op Opcode, snap sequencer.Snapshot) (resp [PayloadSize]byte, ok bool) {
	switch op {
	case OpIsWokenUp:
		resp[0] = On

	case OpFsmState:
		binary.LittleEndian.PutUint32(resp[:], uint32(snap.State))

	case OpOxidizerInletP, OpOxidizerInletT, OpEngineInletP, OpEngineInletT, OpChamberP, OpChamberT:
		putFloat(resp[:], snap.Memory.Readings.Get(readChannels[op]))

	case OpValvesState:
		resp[0] = flagByte(snap.Memory.Valves.MainEngine)
		resp[1] = flagByte(snap.Memory.Valves.Oxidizer)

	case OpSpecificImpulse:
		putFloat(resp[:], snap.Memory.Burn.TotalImpulse)

	default:
		return resp, false
	}
	return resp, true
}

func putFloat(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}

func flagByte(on bool) byte {
	if on {
		return On
	}
	return Off
}
