package overlay

import "math"

const (
	// The pipeline sends 16 raw amplitude channels; only the first 9 are
	// rendered, but all 16 are smoothed so the hidden ones carry no stale
	// energy when the bar count ever changes.
	rawSlots   = 16
	RenderBars = 9

	// Fixed responsiveness/jitter trade-off. Not configurable.
	smoothKeep = 0.7
	smoothGain = 0.3

	curveExp = 0.7
)

// smoother holds the persistent exponential moving average of the raw
// amplitude channels. Zero value is ready to use.
type smoother struct {
	slots [rawSlots]float64
}

// feed folds one raw frame into the average. Missing channels count as
// silence, inputs are clamped to [0,1].
func (s *smoother) feed(raw []float64) {
	for i := range s.slots {
		v := 0.0
		if i < len(raw) {
			v = clamp01(raw[i])
		}
		s.slots[i] = s.slots[i]*smoothKeep + v*smoothGain
	}
}

// bars returns the rendered slice of the average.
func (s *smoother) bars() [RenderBars]float64 {
	var b [RenderBars]float64
	copy(b[:], s.slots[:RenderBars])
	return b
}

func (s *smoother) reset() {
	s.slots = [rawSlots]float64{}
}

// BarHeight maps a smoothed level to display intensity. Purely presentational;
// monotone, so a higher level never renders a shorter bar.
func BarHeight(v float64) float64 {
	return math.Pow(clamp01(v), curveExp)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
