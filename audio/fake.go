package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"time"
)

const (
	fakeFrameSize     = 1024
	fakeBytesPerFrame = 2 // 16-bit mono
	fakeToneHz        = 220.0
)

// FakeContext produces a synthetic tone so the overlay can be exercised
// without a microphone.
type FakeContext struct {
	amplitude float64
}

// NewFakeContext creates a context whose capture devices emit a steady tone
// at the given amplitude in [0,1].
func NewFakeContext(amplitude float64) *FakeContext {
	return &FakeContext{amplitude: amplitude}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	rate := config.SampleRate
	if rate == 0 {
		rate = SampleRate
	}
	return &FakeCapture{amplitude: f.amplitude, rate: rate}, nil
}

type FakeCapture struct {
	amplitude float64
	rate      uint32

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopCh != nil {
		select {
		case <-f.stopCh:
		default:
			return nil // already running
		}
	}
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})

	stop := f.stopCh
	done := f.feedDone
	interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(f.rate)

	go func() {
		defer close(done)
		chunk := make([]byte, fakeFrameSize*fakeBytesPerFrame)
		phase := 0.0
		step := 2 * math.Pi * fakeToneHz / float64(f.rate)
		for {
			select {
			case <-stop:
				return
			case <-time.After(interval):
			}

			for i := 0; i < fakeFrameSize; i++ {
				v := math.Sin(phase) * f.amplitude
				phase += step
				binary.LittleEndian.PutUint16(chunk[i*2:], uint16(int16(v*32767)))
			}

			f.mu.Lock()
			cb := f.cb
			f.mu.Unlock()
			if cb != nil {
				cb(chunk, fakeFrameSize)
			}
		}
	}()

	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	stop, done := f.stopCh, f.feedDone
	f.mu.Unlock()
	if stop == nil {
		return
	}
	select {
	case <-stop:
	default:
		close(stop)
	}
	<-done
}

func (f *FakeCapture) Close() {
	f.Stop()
}
