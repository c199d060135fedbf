//go:build linux

package sensor

import (
	"fmt"

	"github.com/go-daq/smbus"
)

// OpenBus opens /dev/i2c-<bus> with the multiplexer as the initial target.
func OpenBus(bus int, muxAddr uint8) (Bus, error) {
	conn, err := smbus.Open(bus, muxAddr)
	if err != nil {
		return nil, fmt.Errorf("open i2c-%d: %w", bus, err)
	}
	return conn, nil
}
