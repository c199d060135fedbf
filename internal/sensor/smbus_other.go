//go:build !linux

package sensor

import "errors"

// OpenBus is not available on non-Linux platforms.
func OpenBus(bus int, muxAddr uint8) (Bus, error) {
	return nil, errors.New("sensor: i2c not supported on this platform (requires Linux)")
}
