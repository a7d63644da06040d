package pipeline

import (
	"math"
	"strings"
	"sync"
	"time"
)

// FakeBackend records cancel commands, for tests and headless mode.
type FakeBackend struct {
	mu      sync.Mutex
	cancels int
}

func (f *FakeBackend) CancelOperation() {
	f.mu.Lock()
	f.cancels++
	f.mu.Unlock()
}

func (f *FakeBackend) Cancels() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancels
}

const scriptText = "the quick brown fox jumps over the lazy dog"

// ScriptedSession drives the bus through one canned dictation session:
// recording with moving levels, word-by-word streaming text, the
// transcribing and processing stages, then the final result. Used by demo
// mode and integration tests. Blocks until the session is done.
func ScriptedSession(ev *Events, step time.Duration) {
	ev.Show("recording")

	frame := make([]float64, 16)
	for tick := 0; tick < 30; tick++ {
		for i := range frame {
			frame[i] = 0.4 + 0.4*math.Sin(float64(tick)*0.5+float64(i)*0.7)
		}
		ev.MicLevel(frame)
		time.Sleep(step)
	}

	words := strings.Fields(scriptText)
	for i := range words {
		ev.StreamingText(strings.Join(words[:i+1], " "))
		time.Sleep(step)
	}

	ev.Show("transcribing")
	time.Sleep(5 * step)
	ev.Show("processing")
	time.Sleep(5 * step)
	ev.Done(scriptText + ".")
}
