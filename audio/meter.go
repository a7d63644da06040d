package audio

import (
	"encoding/binary"
	"math"
)

// Bands is the number of raw level channels fed to the overlay per frame.
const Bands = 16

// Speech RMS rarely exceeds 0.25 of full scale; the fixed gain lifts normal
// speaking volume into the visible range. The overlay clamps to [0,1].
const meterGain = 4.0

// Meter converts S16LE mono PCM frames into per-band RMS levels. Safe to
// drive straight from a capture callback; emit is called on that goroutine.
type Meter struct {
	emit func(levels []float64)
	out  [Bands]float64
}

func NewMeter(emit func(levels []float64)) *Meter {
	return &Meter{emit: emit}
}

// Process splits one PCM frame into Bands equal segments and emits the RMS
// of each. Short or empty frames are dropped rather than emitted as noise.
func (m *Meter) Process(data []byte, frameCount uint32) {
	samples := len(data) / 2
	if samples < Bands {
		return
	}

	var sums [Bands]float64
	var counts [Bands]int
	for i := 0; i < samples; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		v := float64(s) / 32768.0
		b := i * Bands / samples
		sums[b] += v * v
		counts[b]++
	}

	for b := range sums {
		m.out[b] = 0
		if counts[b] > 0 {
			m.out[b] = math.Sqrt(sums[b]/float64(counts[b])) * meterGain
		}
	}
	m.emit(m.out[:])
}
