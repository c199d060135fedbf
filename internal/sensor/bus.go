package sensor

// Bus is the subset of an SMBus controller used by the mux and the digital sensors.
type Bus interface {
	ReadReg(addr, reg uint8) (uint8, error)
	WriteReg(addr, reg, v uint8) error
	Close() error
}
