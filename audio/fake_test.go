package audio

import (
	"testing"
	"time"
)

func TestFakeCaptureFeedsMeter(t *testing.T) {
	ctx := NewFakeContext(0.5)
	capture, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: SampleRate, Channels: Channels})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	defer capture.Close()

	levels := make(chan []float64, 64)
	meter := NewMeter(func(l []float64) {
		select {
		case levels <- append([]float64(nil), l...):
		default:
		}
	})
	capture.SetCallback(meter.Process)

	if err := capture.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case frame := <-levels:
			if len(frame) != Bands {
				t.Fatalf("frame width: %d", len(frame))
			}
			peak := 0.0
			for _, v := range frame {
				if v > peak {
					peak = v
				}
			}
			if peak > 0.1 {
				return // the tone reached the meter
			}
		case <-deadline:
			t.Fatal("no level frames from fake capture")
		}
	}
}

func TestFakeCaptureStopIsIdempotent(t *testing.T) {
	ctx := NewFakeContext(0.2)
	capture, err := ctx.NewCapture(nil, CaptureConfig{})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := capture.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	capture.Stop()
	capture.Stop()
	capture.Close()
}
