package pipeline

import (
	"sync"
	"testing"
	"time"
)

type recSink struct {
	mu     sync.Mutex
	shows  []string
	hides  int
	levels [][]float64
	texts  []string
	dones  []string
}

func (r *recSink) ShowOverlay(target string) {
	r.mu.Lock()
	r.shows = append(r.shows, target)
	r.mu.Unlock()
}

func (r *recSink) HideOverlay() {
	r.mu.Lock()
	r.hides++
	r.mu.Unlock()
}

func (r *recSink) MicLevel(raw []float64) {
	cp := append([]float64(nil), raw...)
	r.mu.Lock()
	r.levels = append(r.levels, cp)
	r.mu.Unlock()
}

func (r *recSink) StreamingText(text string) {
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.mu.Unlock()
}

func (r *recSink) OverlayDone(text string) {
	r.mu.Lock()
	r.dones = append(r.dones, text)
	r.mu.Unlock()
}

type sinkState struct {
	shows  []string
	hides  int
	levels [][]float64
	texts  []string
	dones  []string
}

func (r *recSink) snapshot() sinkState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sinkState{
		shows:  append([]string(nil), r.shows...),
		hides:  r.hides,
		levels: append([][]float64(nil), r.levels...),
		texts:  append([]string(nil), r.texts...),
		dones:  append([]string(nil), r.dones...),
	}
}

func waitUntil(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func TestEventsFanOut(t *testing.T) {
	ev := NewEvents()
	a := &recSink{}
	b := &recSink{}
	ev.Subscribe(a)
	ev.Subscribe(b)

	ev.Show("recording")
	ev.MicLevel([]float64{0.5})
	ev.StreamingText("abc")
	ev.Done("abc.")
	ev.Hide()

	for _, s := range []*recSink{a, b} {
		got := s.snapshot()
		if len(got.shows) != 1 || got.shows[0] != "recording" {
			t.Fatalf("shows: %+v", got.shows)
		}
		if len(got.levels) != 1 || got.levels[0][0] != 0.5 {
			t.Fatalf("levels: %+v", got.levels)
		}
		if len(got.texts) != 1 || got.texts[0] != "abc" {
			t.Fatalf("texts: %+v", got.texts)
		}
		if len(got.dones) != 1 || got.dones[0] != "abc." {
			t.Fatalf("dones: %+v", got.dones)
		}
		if got.hides != 1 {
			t.Fatalf("hides: %d", got.hides)
		}
	}
}

func TestEventsUnsubscribe(t *testing.T) {
	ev := NewEvents()
	s := &recSink{}
	unsub := ev.Subscribe(s)

	ev.Show("recording")
	unsub()
	unsub() // second call is harmless
	ev.Show("done")

	got := s.snapshot()
	if len(got.shows) != 1 {
		t.Fatalf("events after unsubscribe: %+v", got.shows)
	}
}

func TestFakeBackendCountsCancels(t *testing.T) {
	fb := &FakeBackend{}
	fb.CancelOperation()
	fb.CancelOperation()
	if fb.Cancels() != 2 {
		t.Fatalf("cancels: %d", fb.Cancels())
	}
}

func TestScriptedSession(t *testing.T) {
	ev := NewEvents()
	s := &recSink{}
	ev.Subscribe(s)

	ScriptedSession(ev, time.Millisecond)

	got := s.snapshot()
	if len(got.shows) != 3 || got.shows[0] != "recording" || got.shows[1] != "transcribing" || got.shows[2] != "processing" {
		t.Fatalf("show sequence: %+v", got.shows)
	}
	if len(got.levels) == 0 {
		t.Fatal("no level frames")
	}
	for _, frame := range got.levels {
		if len(frame) != 16 {
			t.Fatalf("frame width: %d", len(frame))
		}
	}
	if len(got.texts) == 0 {
		t.Fatal("no streaming text")
	}
	for i := 1; i < len(got.texts); i++ {
		if len(got.texts[i]) <= len(got.texts[i-1]) {
			t.Fatalf("streamed text did not grow: %q -> %q", got.texts[i-1], got.texts[i])
		}
	}
	if len(got.dones) != 1 || got.dones[0] == "" {
		t.Fatalf("dones: %+v", got.dones)
	}
	if last := got.texts[len(got.texts)-1]; got.dones[0][:len(last)] != last {
		t.Fatalf("final text %q does not extend streamed %q", got.dones[0], last)
	}
}
