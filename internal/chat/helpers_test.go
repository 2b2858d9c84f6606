package chat

import (
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	cfg := DefaultConfig()
	cfg.OutBuffer = 256
	return NewHub(cfg, testLogger())
}

// newPipeClient builds a client over an in-memory pipe. Nothing reads the far
// end, which is fine: tests inspect the Out channel directly and never start
// the writer goroutine.
func newPipeClient(t *testing.T) *Client {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return NewClient(server, DefaultConfig())
}

func connect(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	h.dispatch(Event{Type: EventConnect, Client: c})
}

func login(t *testing.T, h *Hub, c *Client, username string) {
	t.Helper()
	connect(t, h, c)
	h.engine.HandleLine(c, "LOGIN "+username)
	lines := drain(c)
	if len(lines) == 0 || lines[0] != "OK" {
		t.Fatalf("login %s: expected OK, got %v", username, lines)
	}
}

// drain returns every line currently buffered for c without blocking.
func drain(c *Client) []string {
	var lines []string
	for {
		select {
		case s, ok := <-c.Out:
			if !ok {
				return lines
			}
			lines = append(lines, s)
		default:
			return lines
		}
	}
}

func waitForPrefix(t *testing.T, ch <-chan string, prefix string) string {
	t.Helper()
	deadline := time.NewTimer(1 * time.Second)
	defer deadline.Stop()
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed while waiting for prefix %q", prefix)
			}
			if strings.HasPrefix(s, prefix) {
				return s
			}
			// ignore other lines (INFO broadcasts etc.)
		case <-deadline.C:
			t.Fatalf("timeout waiting for prefix %q", prefix)
		}
	}
}
