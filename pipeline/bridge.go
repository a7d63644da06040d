package pipeline

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"hush/log"
)

// Wire event names, matching the pipeline's emitter.
const (
	eventShow = "show-overlay"
	eventHide = "hide-overlay"
	eventMic  = "mic-level"
	eventText = "streaming-text"
	eventDone = "overlay-done"

	commandCancel = "cancel-operation"
)

// message is one JSON line on the pipeline socket.
type message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type command struct {
	Command string `json:"command"`
}

// Bridge carries pipeline events over a unix socket, one JSON object per
// line. The pipeline process connects and streams events; commands travel
// back on the same connection. A malformed or unknown line poisons only
// itself, never the connection.
type Bridge struct {
	events *Events
	ln     net.Listener

	mu   sync.Mutex
	conn net.Conn

	stop chan struct{}
	done chan struct{}
}

// ListenBridge listens on path and forwards inbound events to ev. A stale
// socket file from a previous run is removed first.
func ListenBridge(path string, ev *Events) (*Bridge, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	b := &Bridge{
		events: ev,
		ln:     ln,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go b.accept()
	return b, nil
}

// CancelOperation writes the cancel command to the connected pipeline,
// fire-and-forget. Safe to call with no pipeline attached.
func (b *Bridge) CancelOperation() {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return
	}
	payload, _ := json.Marshal(command{Command: commandCancel})
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		log.Warnf("pipeline: cancel command not delivered: %v", err)
	}
}

// Close tears the bridge down and drops the current connection.
func (b *Bridge) Close() error {
	select {
	case <-b.stop:
		return nil
	default:
		close(b.stop)
	}
	err := b.ln.Close()
	b.mu.Lock()
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	b.mu.Unlock()
	<-b.done
	return err
}

func (b *Bridge) accept() {
	defer close(b.done)
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			select {
			case <-b.stop:
				return
			default:
			}
			log.Warnf("pipeline: accept: %v", err)
			return
		}

		// One pipeline at a time; a reconnect replaces the old stream.
		b.mu.Lock()
		if b.conn != nil {
			b.conn.Close()
		}
		b.conn = conn
		b.mu.Unlock()

		go b.read(conn)
	}
}

func (b *Bridge) read(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg message
		if err := json.Unmarshal(line, &msg); err != nil {
			log.Warnf("pipeline: bad event line: %v", err)
			continue
		}
		b.dispatch(msg)
	}
	b.mu.Lock()
	current := b.conn == conn
	if current {
		b.conn = nil
	}
	b.mu.Unlock()
	conn.Close()

	// Replaced and shut-down streams fail their read; stay quiet for those.
	if err := scanner.Err(); err != nil && current {
		select {
		case <-b.stop:
		default:
			log.Warnf("pipeline: read: %v", err)
		}
	}
}

func (b *Bridge) dispatch(msg message) {
	switch msg.Event {
	case eventShow:
		var target string
		if err := json.Unmarshal(msg.Data, &target); err != nil {
			log.Warnf("pipeline: show-overlay payload: %v", err)
			return
		}
		b.events.Show(target)
	case eventHide:
		b.events.Hide()
	case eventMic:
		var raw []float64
		if err := json.Unmarshal(msg.Data, &raw); err != nil {
			log.Warnf("pipeline: mic-level payload: %v", err)
			return
		}
		b.events.MicLevel(raw)
	case eventText:
		var text string
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			log.Warnf("pipeline: streaming-text payload: %v", err)
			return
		}
		b.events.StreamingText(text)
	case eventDone:
		var text string
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			log.Warnf("pipeline: overlay-done payload: %v", err)
			return
		}
		b.events.Done(text)
	default:
		log.Warnf("pipeline: unknown event %q", msg.Event)
	}
}
