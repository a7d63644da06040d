package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func pcmFrame(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}

func constSamples(n int, v int16) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

type meterRec struct {
	frames [][]float64
}

func (r *meterRec) emit(levels []float64) {
	r.frames = append(r.frames, append([]float64(nil), levels...))
}

func TestMeterSilence(t *testing.T) {
	rec := &meterRec{}
	m := NewMeter(rec.emit)

	m.Process(pcmFrame(constSamples(1600, 0)), 1600)

	if len(rec.frames) != 1 {
		t.Fatalf("frames emitted: %d", len(rec.frames))
	}
	for b, v := range rec.frames[0] {
		if v != 0 {
			t.Fatalf("band %d not silent: %f", b, v)
		}
	}
}

func TestMeterConstantAmplitude(t *testing.T) {
	rec := &meterRec{}
	m := NewMeter(rec.emit)

	// Quarter of full scale: RMS 0.25, lifted by the meter gain.
	m.Process(pcmFrame(constSamples(1600, 8192)), 1600)

	if len(rec.frames) != 1 {
		t.Fatalf("frames emitted: %d", len(rec.frames))
	}
	want := 0.25 * meterGain
	for b, v := range rec.frames[0] {
		if math.Abs(v-want) > 1e-3 {
			t.Fatalf("band %d: got %f, want %f", b, v, want)
		}
	}
}

func TestMeterBandOrder(t *testing.T) {
	rec := &meterRec{}
	m := NewMeter(rec.emit)

	// Silence in the first half of the frame, signal in the second.
	samples := constSamples(1600, 0)
	for i := 800; i < 1600; i++ {
		samples[i] = 8192
	}
	m.Process(pcmFrame(samples), 1600)

	frame := rec.frames[0]
	for b := 0; b < Bands/2; b++ {
		if frame[b] != 0 {
			t.Fatalf("leading band %d not silent: %f", b, frame[b])
		}
	}
	for b := Bands / 2; b < Bands; b++ {
		if frame[b] < 0.5 {
			t.Fatalf("trailing band %d missed the signal: %f", b, frame[b])
		}
	}
}

func TestMeterDropsShortFrames(t *testing.T) {
	rec := &meterRec{}
	m := NewMeter(rec.emit)

	m.Process(pcmFrame(constSamples(Bands-1, 8192)), uint32(Bands-1))
	m.Process(nil, 0)

	if len(rec.frames) != 0 {
		t.Fatalf("short frame emitted: %d", len(rec.frames))
	}
}

func TestIsBluetooth(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"AirPods Pro", true},
		{"Jabra Elite 85t", true},
		{"WH-1000XM5", true},
		{"Built-in Microphone", false},
		{"USB Audio Device", false},
		{"Scarlett Solo BT (hands-free)", true},
	}
	for _, c := range cases {
		if got := IsBluetooth(c.name); got != c.want {
			t.Fatalf("IsBluetooth(%q) = %t, want %t", c.name, got, c.want)
		}
	}
}
