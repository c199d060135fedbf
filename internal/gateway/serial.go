package gateway

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the host UART speed.
const DefaultBaudRate = 115200

// readTimeout bounds each Read so Link.Run can observe cancellation.
const readTimeout = 100 * time.Millisecond

// OpenSerial opens a UART for use with NewLink.
func OpenSerial(name string, baud int) (serial.Port, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	return port, nil
}
