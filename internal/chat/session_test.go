package chat

import (
	"bufio"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

func TestReadLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("hello\r\nworld\nlast"))

	line, err := readLine(r)
	if err != nil || line != "hello" {
		t.Fatalf("got %q, %v", line, err)
	}
	line, err = readLine(r)
	if err != nil || line != "world" {
		t.Fatalf("got %q, %v", line, err)
	}
	// Last line without a trailing newline is still delivered.
	line, err = readLine(r)
	if err != nil || line != "last" {
		t.Fatalf("got %q, %v", line, err)
	}
	if _, err = readLine(r); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestReadLoop_ForwardsLinesThenDisconnect(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})

	c := NewClient(server, DefaultConfig())
	events := make(chan Event, 16)
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	go ReadLoop(c, events, done, testLogger())

	go func() {
		_, _ = client.Write([]byte("LOGIN alice\nPING\n"))
		_ = client.Close()
	}()

	ev := waitEvent(t, events)
	if ev.Type != EventLine || ev.Line != "LOGIN alice" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	ev = waitEvent(t, events)
	if ev.Type != EventLine || ev.Line != "PING" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	ev = waitEvent(t, events)
	if ev.Type != EventDisconnect || ev.Cause != CauseStreamEnd {
		t.Fatalf("expected stream-end disconnect, got %+v", ev)
	}
}

func TestReadLoop_DropsLinesOverRateBudget(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})

	cfg := DefaultConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 1
	c := NewClient(server, cfg)

	events := make(chan Event, 16)
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	go ReadLoop(c, events, done, testLogger())

	go func() {
		_, _ = client.Write([]byte("PING\nPING\nPING\n"))
		_ = client.Close()
	}()

	ev := waitEvent(t, events)
	if ev.Type != EventLine || ev.Line != "PING" {
		t.Fatalf("unexpected first event: %+v", ev)
	}
	// The burst is spent; the remaining lines are dropped and the next
	// event is the disconnect.
	ev = waitEvent(t, events)
	if ev.Type != EventDisconnect {
		t.Fatalf("expected disconnect after rate-limited lines, got %+v", ev)
	}
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}
