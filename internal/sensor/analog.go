package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ADC reads raw conversion codes.
type ADC interface {
	Read(index int) (int, error)
}

// IIO reads an industrial-I/O ADC through sysfs.
type IIO struct {
	dir string
}

// DefaultIIODevice is the first IIO device on the board.
const DefaultIIODevice = "/sys/bus/iio/devices/iio:device0"

// NewIIO returns an ADC backed by the sysfs directory of an IIO device.
func NewIIO(dir string) (*IIO, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("open iio device: %w", err)
	}
	return &IIO{dir: dir}, nil
}

// Read returns the raw code of in_voltage<index>_raw.
func (a *IIO) Read(index int) (int, error) {
	name := filepath.Join(a.dir, fmt.Sprintf("in_voltage%d_raw", index))
	data, err := os.ReadFile(name)
	if err != nil {
		return 0, fmt.Errorf("read adc %d: %w", index, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse adc %d: %w", index, err)
	}
	return v, nil
}
