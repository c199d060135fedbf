// Package indicator drives the tri-colour status LED.
package indicator

import (
	"log"

	"github.com/sweeney/prb-computer/internal/gpio"
)

// Color is one entry of the fixed LED palette.
type Color int

const (
	Off Color = iota
	Red
	Green
	Blue
	White
	Purple
	Orange
	Teal
)

var colorNames = map[Color]string{
	Off:    "OFF",
	Red:    "RED",
	Green:  "GREEN",
	Blue:   "BLUE",
	White:  "WHITE",
	Purple: "PURPLE",
	Orange: "ORANGE",
	Teal:   "TEAL",
}

func (c Color) String() string {
	if s, ok := colorNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// rgb returns which channels are lit. The LED is on/off per channel, so
// orange is red+green and teal is green+blue.
func (c Color) rgb() (r, g, b bool) {
	switch c {
	case Red:
		return true, false, false
	case Green:
		return false, true, false
	case Blue:
		return false, false, true
	case White:
		return true, true, true
	case Purple:
		return true, false, true
	case Orange:
		return true, true, false
	case Teal:
		return false, true, true
	}
	return false, false, false
}

// Pins maps the LED channels to output lines.
type Pins struct {
	Red   int
	Green int
	Blue  int
}

// DefaultPins returns the bench wiring.
func DefaultPins() Pins {
	return Pins{Red: gpio.DefaultPinLEDRed, Green: gpio.DefaultPinLEDGreen, Blue: gpio.DefaultPinLEDBlue}
}

// List returns the pins in R, G, B order.
func (p Pins) List() []int {
	return []int{p.Red, p.Green, p.Blue}
}

// LED shows palette colours on three output lines.
type LED struct {
	out   gpio.Writer
	pins  Pins
	cur   Color
	shown bool
}

// New creates an LED. Nothing is written until the first Show.
func New(out gpio.Writer, pins Pins) *LED {
	return &LED{out: out, pins: pins}
}

// Show sets the colour. Repeating the current colour does not touch the lines.
func (l *LED) Show(c Color) {
	if l.shown && c == l.cur {
		return
	}
	r, g, b := c.rgb()
	for _, w := range []struct {
		pin int
		on  bool
	}{{l.pins.Red, r}, {l.pins.Green, g}, {l.pins.Blue, b}} {
		if err := l.out.Set(w.pin, w.on); err != nil {
			log.Printf("indicator: show %s: %v", c, err)
			return
		}
	}
	l.cur = c
	l.shown = true
}

// Current returns the last colour shown.
func (l *LED) Current() Color {
	return l.cur
}
