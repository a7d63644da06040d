package pipeline

import (
	"bufio"
	"net"
	"path/filepath"
	"testing"
	"time"
)

func dialBridge(t *testing.T, ev *Events) (*Bridge, net.Conn) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hush.sock")
	b, err := ListenBridge(path, ev)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return b, conn
}

func send(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestBridgeDispatchesEvents(t *testing.T) {
	ev := NewEvents()
	s := &recSink{}
	ev.Subscribe(s)
	_, conn := dialBridge(t, ev)

	send(t, conn, `{"event":"show-overlay","data":"recording"}`)
	send(t, conn, `{"event":"mic-level","data":[0.1,0.2,0.3]}`)
	send(t, conn, `{"event":"streaming-text","data":"hello"}`)
	send(t, conn, `{"event":"overlay-done","data":"hello world."}`)
	send(t, conn, `{"event":"hide-overlay"}`)

	waitUntil(t, "all events", func() bool {
		got := s.snapshot()
		return len(got.shows) == 1 && len(got.levels) == 1 &&
			len(got.texts) == 1 && len(got.dones) == 1 && got.hides == 1
	})

	got := s.snapshot()
	if got.shows[0] != "recording" {
		t.Fatalf("show: %q", got.shows[0])
	}
	if got.levels[0][1] != 0.2 {
		t.Fatalf("levels: %+v", got.levels[0])
	}
	if got.texts[0] != "hello" || got.dones[0] != "hello world." {
		t.Fatalf("texts: %q dones: %q", got.texts[0], got.dones[0])
	}
}

func TestBridgeSurvivesBadLines(t *testing.T) {
	ev := NewEvents()
	s := &recSink{}
	ev.Subscribe(s)
	_, conn := dialBridge(t, ev)

	send(t, conn, `{not json`)
	send(t, conn, `{"event":"no-such-event","data":1}`)
	send(t, conn, `{"event":"show-overlay","data":42}`)
	send(t, conn, `{"event":"show-overlay","data":"done"}`)

	// Only the last, well-formed line may land.
	waitUntil(t, "valid show", func() bool { return len(s.snapshot().shows) == 1 })
	if got := s.snapshot().shows[0]; got != "done" {
		t.Fatalf("show: %q", got)
	}
}

func TestBridgeCancelCommand(t *testing.T) {
	ev := NewEvents()
	s := &recSink{}
	ev.Subscribe(s)
	b, conn := dialBridge(t, ev)

	// Prove the connection was accepted before sending the command back.
	send(t, conn, `{"event":"hide-overlay"}`)
	waitUntil(t, "connection accepted", func() bool { return s.snapshot().hides == 1 })

	b.CancelOperation()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read command: %v", err)
	}
	if line != `{"command":"cancel-operation"}`+"\n" {
		t.Fatalf("command line: %q", line)
	}
}

func TestBridgeCancelWithoutConnection(t *testing.T) {
	ev := NewEvents()
	path := filepath.Join(t.TempDir(), "hush.sock")
	b, err := ListenBridge(path, ev)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer b.Close()

	b.CancelOperation() // must not panic or block
}

func TestBridgeReconnectReplacesStream(t *testing.T) {
	ev := NewEvents()
	s := &recSink{}
	ev.Subscribe(s)
	b, conn := dialBridge(t, ev)

	send(t, conn, `{"event":"show-overlay","data":"recording"}`)
	waitUntil(t, "first connection", func() bool { return len(s.snapshot().shows) == 1 })

	conn2, err := net.Dial("unix", b.ln.Addr().String())
	if err != nil {
		t.Fatalf("redial: %v", err)
	}
	defer conn2.Close()

	send(t, conn2, `{"event":"show-overlay","data":"transcribing"}`)
	waitUntil(t, "second connection", func() bool { return len(s.snapshot().shows) == 2 })
	if got := s.snapshot().shows[1]; got != "transcribing" {
		t.Fatalf("show: %q", got)
	}
}
