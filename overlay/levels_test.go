package overlay

import (
	"math"
	"testing"
)

func frame(v float64) []float64 {
	raw := make([]float64, rawSlots)
	for i := range raw {
		raw[i] = v
	}
	return raw
}

func TestSmootherConvergesWithoutOvershoot(t *testing.T) {
	var s smoother
	prev := 0.0
	for i := 0; i < 100; i++ {
		s.feed(frame(1))
		v := s.slots[0]
		if v < prev {
			t.Fatalf("iteration %d: value regressed %f -> %f", i, prev, v)
		}
		if v > 1 {
			t.Fatalf("iteration %d: overshoot %f", i, v)
		}
		prev = v
	}
	if math.Abs(prev-1) > 0.01 {
		t.Fatalf("did not converge: %f", prev)
	}
}

func TestSmootherFirstFrame(t *testing.T) {
	var s smoother
	s.feed(frame(1))
	if got := s.slots[0]; math.Abs(got-smoothGain) > 1e-12 {
		t.Fatalf("first frame: got %f, want %f", got, smoothGain)
	}
}

func TestSmootherClampsInput(t *testing.T) {
	var s smoother
	s.feed(frame(5))
	if got := s.slots[0]; got != smoothGain {
		t.Fatalf("over-range input not clamped: %f", got)
	}
	s.reset()
	s.feed(frame(-3))
	if got := s.slots[0]; got != 0 {
		t.Fatalf("negative input not clamped: %f", got)
	}
}

func TestSmootherShortFrameDecaysMissingSlots(t *testing.T) {
	var s smoother
	s.feed(frame(1))

	// A frame with fewer values than slots treats the missing tail as zero.
	s.feed([]float64{1, 1})
	if got := s.slots[2]; math.Abs(got-smoothGain*smoothKeep) > 1e-12 {
		t.Fatalf("missing slot did not decay: %f", got)
	}
	if got := s.slots[0]; got <= smoothGain {
		t.Fatalf("fed slot decayed: %f", got)
	}
}

func TestSmootherDecaysToZero(t *testing.T) {
	var s smoother
	s.feed(frame(1))
	for i := 0; i < 200; i++ {
		s.feed(frame(0))
	}
	if got := s.slots[0]; got > 1e-6 {
		t.Fatalf("did not decay to zero: %f", got)
	}
}

func TestBarsReturnsLeadingSlots(t *testing.T) {
	var s smoother
	raw := make([]float64, rawSlots)
	for i := range raw {
		raw[i] = float64(i) / float64(rawSlots)
	}
	s.feed(raw)
	bars := s.bars()
	for i := range bars {
		if bars[i] != s.slots[i] {
			t.Fatalf("bar %d: got %f, want %f", i, bars[i], s.slots[i])
		}
	}
}

func TestSmootherReset(t *testing.T) {
	var s smoother
	s.feed(frame(1))
	s.reset()
	for i, v := range s.slots {
		if v != 0 {
			t.Fatalf("slot %d not cleared: %f", i, v)
		}
	}
}

func TestBarHeight(t *testing.T) {
	if got := BarHeight(0); got != 0 {
		t.Fatalf("BarHeight(0) = %f", got)
	}
	if got := BarHeight(1); got != 1 {
		t.Fatalf("BarHeight(1) = %f", got)
	}
	if got := BarHeight(2); got != 1 {
		t.Fatalf("BarHeight clamps above 1: %f", got)
	}
	if got := BarHeight(-1); got != 0 {
		t.Fatalf("BarHeight clamps below 0: %f", got)
	}

	// The presentation curve lifts quiet levels.
	if BarHeight(0.25) <= 0.25 {
		t.Fatalf("curve did not lift quiet level: %f", BarHeight(0.25))
	}
	prev := 0.0
	for v := 0.05; v <= 1; v += 0.05 {
		h := BarHeight(v)
		if h < prev {
			t.Fatalf("curve not monotonic at %f: %f < %f", v, h, prev)
		}
		prev = h
	}
}
