package sensor

import ring "github.com/zfjagann/golang-ring"

// WindowSize is the number of chamber-pressure samples averaged at the ramp-up gate.
const WindowSize = 5

// PressureWindow is a zero-filled moving window over the last WindowSize samples.
type PressureWindow struct {
	r   *ring.Ring
	idx int
}

// NewPressureWindow returns a window holding WindowSize zeros.
func NewPressureWindow() *PressureWindow {
	w := &PressureWindow{}
	w.Reset()
	return w
}

// Reset refills the window with zeros and rewinds the write index.
func (w *PressureWindow) Reset() {
	r := &ring.Ring{}
	r.SetCapacity(WindowSize)
	for i := 0; i < WindowSize; i++ {
		r.Enqueue(0.0)
	}
	w.r = r
	w.idx = 0
}

// Push overwrites the oldest sample and returns the new mean.
func (w *PressureWindow) Push(bar float64) float64 {
	w.r.Enqueue(bar)
	w.idx = (w.idx + 1) % WindowSize
	return w.Mean()
}

// Mean is the arithmetic mean of all slots.
func (w *PressureWindow) Mean() float64 {
	var sum float64
	for _, v := range w.r.Values() {
		sum += v.(float64)
	}
	return sum / WindowSize
}

// Index is the slot the next sample will be written to.
func (w *PressureWindow) Index() int {
	return w.idx
}

// Slots returns the samples by slot position; slot Index() holds the oldest.
func (w *PressureWindow) Slots() [WindowSize]float64 {
	var out [WindowSize]float64
	for k, v := range w.r.Values() {
		out[(w.idx+k)%WindowSize] = v.(float64)
	}
	return out
}

// Recent returns the samples oldest first.
func (w *PressureWindow) Recent() []float64 {
	vals := w.r.Values()
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v.(float64)
	}
	return out
}
