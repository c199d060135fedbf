// Package gpio provides digital output writing with hardware abstraction.
// The real implementation uses the Linux GPIO character device; a periph.io
// backend is available for boards where the character device is not exposed.
// The fake implementation allows testing without hardware.
package gpio

// Writer drives digital output lines.
type Writer interface {
	// Set drives the line for the given BCM pin high or low.
	Set(pin int, high bool) error

	// Close drives every requested line low and releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinMainEngine = 17
	DefaultPinOxidizer   = 27
	DefaultPinIgniter    = 22
	DefaultPinLEDRed     = 5
	DefaultPinLEDGreen   = 6
	DefaultPinLEDBlue    = 13
	DefaultPinMuxReset   = 23
)

// DefaultChip is the GPIO character device used on a Raspberry Pi.
const DefaultChip = "gpiochip0"
