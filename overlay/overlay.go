// Package overlay implements the dictation overlay state machine: it folds
// the pipeline's event stream into a single render-safe snapshot and carries
// the user's copy/close intents back out.
package overlay

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"hush/log"
)

// State is the pipeline stage the overlay reflects.
type State int

const (
	Recording State = iota
	Transcribing
	Processing
	Done
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	case Processing:
		return "processing"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// ParseState maps a show-overlay payload token to a State.
func ParseState(token string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "recording":
		return Recording, nil
	case "transcribing":
		return Transcribing, nil
	case "processing":
		return Processing, nil
	case "done":
		return Done, nil
	}
	return 0, fmt.Errorf("overlay: unknown state token %q", token)
}

// Snapshot is the full derived render model. The presentation layers are pure
// functions of it; all transition logic lives in the Machine.
type Snapshot struct {
	Visible bool
	State   State
	Levels  [RenderBars]float64
	Text    string
	Copied  bool
}

// Clipboard is the platform clipboard, write path only.
type Clipboard interface {
	Copy(text string) error
}

// Backend receives fire-and-forget commands for the external pipeline.
type Backend interface {
	// CancelOperation must be safe to call when no operation is active.
	CancelOperation()
}

const defaultCopyResetDelay = 1500 * time.Millisecond

// Option configures the machine.
type Option func(*Machine)

// WithCopyResetDelay overrides the copy-confirmation reset delay.
func WithCopyResetDelay(d time.Duration) Option {
	return func(m *Machine) { m.copyResetDelay = d }
}

// WithLanguageSync installs the hook that refreshes localized strings.
// It runs once per show event, before the event payload is applied.
func WithLanguageSync(fn func()) Option {
	return func(m *Machine) { m.langSync = fn }
}

// WithUpdateFunc installs the render notification. It is called with a copy
// of the snapshot after every applied event, from the machine goroutine.
func WithUpdateFunc(fn func(Snapshot)) Option {
	return func(m *Machine) { m.onUpdate = fn }
}

// Machine owns the snapshot. Events and intents from any goroutine are
// funneled through one queue and applied by a single goroutine, so no two
// handlers ever interleave mutation.
type Machine struct {
	clip     Clipboard
	backend  Backend
	langSync func()
	onUpdate func(Snapshot)

	copyResetDelay time.Duration

	events  chan event
	stop    chan struct{}
	ran     chan struct{}
	started bool

	mu       sync.Mutex
	snap     Snapshot
	smooth   smoother
	session  int // bumped on every reset; stale async results are dropped
	copyGen  int // bumped on every manual copy; stale timer fires are dropped
	copyStop *time.Timer
}

// New creates a machine with the default snapshot: invisible, Recording,
// zero levels, empty text. Call Start before posting events.
func New(clip Clipboard, backend Backend, opts ...Option) *Machine {
	m := &Machine{
		clip:           clip,
		backend:        backend,
		copyResetDelay: defaultCopyResetDelay,
		events:         make(chan event, 256),
		stop:           make(chan struct{}),
		ran:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the event loop.
func (m *Machine) Start() {
	if m.started {
		return
	}
	m.started = true
	go m.run()
}

// Stop terminates the event loop and cancels any pending copy-reset timer.
// Pending events are discarded.
func (m *Machine) Stop() {
	select {
	case <-m.stop:
		return
	default:
		close(m.stop)
	}
	if m.started {
		<-m.ran
	}
	m.mu.Lock()
	if m.copyStop != nil {
		m.copyStop.Stop()
		m.copyStop = nil
	}
	m.mu.Unlock()
}

// Snapshot returns a copy of the current render model.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Inbound event channels (pipeline.Sink).

func (m *Machine) ShowOverlay(target string) { m.post(showEvent{target: target}) }
func (m *Machine) HideOverlay()              { m.post(hideEvent{}) }
func (m *Machine) StreamingText(text string) { m.post(textEvent{text: text}) }
func (m *Machine) OverlayDone(text string)   { m.post(doneEvent{text: text}) }

// MicLevel feeds raw amplitudes into the smoother. The slice is copied, so
// callers may reuse their buffer.
func (m *Machine) MicLevel(raw []float64) {
	cp := make([]float64, len(raw))
	copy(cp, raw)
	m.post(levelEvent{raw: cp})
}

// User intents.

// CopyText writes the current text to the clipboard and shows the copy
// confirmation for a short interval. No-op while the text is empty.
func (m *Machine) CopyText() { m.post(copyIntent{}) }

// Close hides and resets the overlay immediately, then tells the pipeline to
// cancel whatever it is doing. The reset is optimistic: it does not wait for
// the backend.
func (m *Machine) Close() { m.post(closeIntent{}) }

type event any

type showEvent struct{ target string }
type hideEvent struct{}
type levelEvent struct{ raw []float64 }
type textEvent struct{ text string }
type doneEvent struct{ text string }
type copyIntent struct{}
type closeIntent struct{}

// copyResult is posted by the async clipboard goroutine.
type copyResult struct {
	ok      bool
	manual  bool
	session int
}

// copyExpire is posted by the copy-reset timer.
type copyExpire struct{ gen int }

func (m *Machine) post(ev event) {
	select {
	case m.events <- ev:
	case <-m.stop:
	}
}

func (m *Machine) run() {
	defer close(m.ran)
	for {
		select {
		case <-m.stop:
			return
		case ev := <-m.events:
			m.apply(ev)
		}
	}
}

// apply handles exactly one event to completion. Every event is treated as
// idempotent and absolute: applying it twice, or applying it late, can never
// leave the snapshot inconsistent.
func (m *Machine) apply(ev event) {
	// Keep localized strings current before a show is processed.
	if _, ok := ev.(showEvent); ok && m.langSync != nil {
		m.langSync()
	}

	m.mu.Lock()
	switch ev := ev.(type) {
	case showEvent:
		st, err := ParseState(ev.target)
		if err != nil {
			// Malformed payload: drop the event, keep the snapshot.
			m.mu.Unlock()
			log.Warnf("overlay: %v", err)
			return
		}
		if st == Recording {
			m.resetSessionLocked()
		}
		m.snap.State = st
		m.snap.Visible = true

	case hideEvent:
		// Hiding is a full reset, not a pause.
		m.resetSessionLocked()
		m.snap.Visible = false
		m.snap.State = Recording

	case levelEvent:
		// Smoothing runs regardless of state and visibility so recording
		// resumes without a startup transient.
		m.smooth.feed(ev.raw)
		m.snap.Levels = m.smooth.bars()

	case textEvent:
		// Every payload is the full current best text, never a delta. Once a
		// result has landed the final text is authoritative; a partial still
		// in flight at completion is stale and must not clobber it.
		if m.snap.State == Done {
			break
		}
		m.snap.Text = ev.text

	case doneEvent:
		m.snap.State = Done
		if ev.text == "" {
			m.snap.Copied = false
			break
		}
		m.snap.Text = ev.text
		log.Transcript(ev.text)
		m.dispatchCopyLocked(ev.text, false)

	case copyIntent:
		if m.snap.Text == "" {
			break
		}
		m.dispatchCopyLocked(m.snap.Text, true)

	case closeIntent:
		m.resetSessionLocked()
		m.snap.Visible = false
		m.snap.State = Recording
		if m.backend != nil {
			go m.backend.CancelOperation()
		}

	case copyResult:
		if ev.session != m.session {
			break // the session it belongs to was already reset
		}
		if ev.manual {
			if ev.ok {
				m.snap.Copied = true
				m.armCopyResetLocked()
			}
			// On failure Copied keeps its prior value.
		} else {
			m.snap.Copied = ev.ok
		}

	case copyExpire:
		if ev.gen == m.copyGen {
			m.snap.Copied = false
			m.copyStop = nil
		}
	}
	snap := m.snap
	m.mu.Unlock()

	if m.onUpdate != nil {
		m.onUpdate(snap)
	}
}

// resetSessionLocked clears everything a fresh recording must not inherit.
func (m *Machine) resetSessionLocked() {
	m.session++
	m.smooth.reset()
	m.snap.Levels = [RenderBars]float64{}
	m.snap.Text = ""
	m.snap.Copied = false
	if m.copyStop != nil {
		m.copyStop.Stop()
		m.copyStop = nil
	}
	m.copyGen++
}

// dispatchCopyLocked writes to the clipboard without blocking the event loop;
// the outcome comes back as a copyResult.
func (m *Machine) dispatchCopyLocked(text string, manual bool) {
	if m.clip == nil {
		return
	}
	session := m.session
	go func() {
		err := m.clip.Copy(text)
		if err != nil {
			log.Errorf("clipboard write failed: %v", err)
		}
		m.post(copyResult{ok: err == nil, manual: manual, session: session})
	}()
}

// armCopyResetLocked (re)arms the single exclusive confirmation timer.
func (m *Machine) armCopyResetLocked() {
	if m.copyStop != nil {
		m.copyStop.Stop()
	}
	m.copyGen++
	gen := m.copyGen
	m.copyStop = time.AfterFunc(m.copyResetDelay, func() {
		m.post(copyExpire{gen: gen})
	})
}
