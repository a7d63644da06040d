// Package pipeline is the boundary to the out-of-process dictation pipeline:
// the five inbound overlay event channels and the outbound cancel command.
package pipeline

import "sync"

// Sink receives the five overlay event channels. The display state machine
// implements this.
type Sink interface {
	ShowOverlay(target string)
	HideOverlay()
	MicLevel(raw []float64)
	StreamingText(text string)
	OverlayDone(text string)
}

// Backend receives fire-and-forget commands for the pipeline process.
type Backend interface {
	CancelOperation()
}

// Events fans inbound pipeline events out to subscribed sinks. Emits from a
// single source goroutine reach each sink in order; ordering across different
// sources is not guaranteed, which is why sinks must treat every event as
// absolute.
type Events struct {
	mu   sync.Mutex
	subs map[int]Sink
	next int
}

func NewEvents() *Events {
	return &Events{subs: make(map[int]Sink)}
}

// Subscribe registers a sink on all five channels at once and returns the
// matching unsubscribe. Unsubscribing twice is harmless.
func (e *Events) Subscribe(s Sink) (unsubscribe func()) {
	e.mu.Lock()
	id := e.next
	e.next++
	e.subs[id] = s
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

func (e *Events) sinks() []Sink {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Sink, 0, len(e.subs))
	for _, s := range e.subs {
		out = append(out, s)
	}
	return out
}

func (e *Events) Show(target string) {
	for _, s := range e.sinks() {
		s.ShowOverlay(target)
	}
}

func (e *Events) Hide() {
	for _, s := range e.sinks() {
		s.HideOverlay()
	}
}

func (e *Events) MicLevel(raw []float64) {
	for _, s := range e.sinks() {
		s.MicLevel(raw)
	}
}

func (e *Events) StreamingText(text string) {
	for _, s := range e.sinks() {
		s.StreamingText(text)
	}
}

func (e *Events) Done(text string) {
	for _, s := range e.sinks() {
		s.OverlayDone(text)
	}
}
