package sensor

import "fmt"

// DefaultSensorAddr is the PTE7300 address.
const DefaultSensorAddr = 0x6C

// PTE7300 result registers, little-endian signed 16-bit.
const (
	regDSPT = 0x2E
	regDSPS = 0x30
)

// ReadDigital reads the pressure (S) and temperature (T) words of the
// digital sensor at addr on an already selected mux channel.
func ReadDigital(bus Bus, addr uint8) (s, t int16, err error) {
	s, err = readWord(bus, addr, regDSPS)
	if err != nil {
		return 0, 0, fmt.Errorf("read DSP_S: %w", err)
	}
	t, err = readWord(bus, addr, regDSPT)
	if err != nil {
		return 0, 0, fmt.Errorf("read DSP_T: %w", err)
	}
	return s, t, nil
}

func readWord(bus Bus, addr, reg uint8) (int16, error) {
	lo, err := bus.ReadReg(addr, reg)
	if err != nil {
		return 0, err
	}
	hi, err := bus.ReadReg(addr, reg+1)
	if err != nil {
		return 0, err
	}
	return int16(uint16(hi)<<8 | uint16(lo)), nil
}
