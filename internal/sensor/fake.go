package sensor

import (
	"errors"
	"sync"
)

// FakeADC is a test double returning scripted raw codes.
type FakeADC struct {
	mu   sync.Mutex
	Raw  map[int]int
	Errs map[int]error
}

// NewFakeADC creates a FakeADC with no inputs configured.
func NewFakeADC() *FakeADC {
	return &FakeADC{Raw: make(map[int]int), Errs: make(map[int]error)}
}

// Set scripts the raw code of input index.
func (f *FakeADC) Set(index, raw int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Raw[index] = raw
}

// Read returns the scripted code, or an error if none was set.
func (f *FakeADC) Read(index int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs[index]; err != nil {
		return 0, err
	}
	v, ok := f.Raw[index]
	if !ok {
		return 0, errors.New("adc input not connected")
	}
	return v, nil
}

// FakeBus emulates a mux at MuxAddr with one register file per mux channel.
type FakeBus struct {
	mu sync.Mutex

	MuxAddr uint8

	// Devices maps mux channel -> device address -> register file.
	Devices map[uint8]map[uint8]map[uint8]uint8

	// Selected is the current mux channel mask; 0 means none.
	Selected uint8

	// Selections records every mux write in order, including deselects.
	Selections []uint8

	// ReadError, if set, is returned by ReadReg.
	ReadError error

	Closed bool
}

// NewFakeBus creates a FakeBus with the mux at muxAddr.
func NewFakeBus(muxAddr uint8) *FakeBus {
	return &FakeBus{MuxAddr: muxAddr, Devices: make(map[uint8]map[uint8]map[uint8]uint8)}
}

// SetDigital scripts the S and T words of the digital sensor at addr behind channel.
func (f *FakeBus) SetDigital(channel, addr uint8, s, t int16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Devices[channel] == nil {
		f.Devices[channel] = make(map[uint8]map[uint8]uint8)
	}
	regs := f.Devices[channel][addr]
	if regs == nil {
		regs = make(map[uint8]uint8)
		f.Devices[channel][addr] = regs
	}
	regs[regDSPS] = uint8(uint16(s))
	regs[regDSPS+1] = uint8(uint16(s) >> 8)
	regs[regDSPT] = uint8(uint16(t))
	regs[regDSPT+1] = uint8(uint16(t) >> 8)
}

// ReadReg reads a register of a device on the selected channel.
func (f *FakeBus) ReadReg(addr, reg uint8) (uint8, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	dev, ok := f.Devices[f.Selected][addr]
	if !ok {
		return 0, errors.New("no ack")
	}
	return dev[reg], nil
}

// WriteReg handles mux selection; writes to other devices are accepted and ignored.
func (f *FakeBus) WriteReg(addr, reg, v uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if addr == f.MuxAddr {
		f.Selected = v
		f.Selections = append(f.Selections, v)
	}
	return nil
}

// Close marks the bus as closed.
func (f *FakeBus) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
