package chat

import (
	"log/slog"
	"sync"
	"time"
)

const teardownWriteGrace = time.Second

// Hub owns all mutable chat state. Its Run loop is the single goroutine that
// touches the registry, the connection set, and every session's fields, so
// command dispatch, teardown, and idle sweeps never interleave.
type Hub struct {
	cfg    Config
	reg    *Registry
	router *Router
	engine *Engine
	logger *slog.Logger

	// conns tracks every live connection, authenticated or not, so that
	// shutdown can force-close all of them.
	conns map[string]*Client

	events   chan Event
	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
}

func NewHub(cfg Config, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	reg := NewRegistry()
	router := NewRouter(reg, logger)
	return &Hub{
		cfg:    cfg,
		reg:    reg,
		router: router,
		engine: NewEngine(reg, router, logger),
		logger: logger,
		conns:  make(map[string]*Client),
		events: make(chan Event, cfg.EventBuffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (h *Hub) Events() chan<- Event {
	return h.events
}

// Done is closed when the Run loop has exited. Reader goroutines select on it
// so they never block on an event channel nobody drains.
func (h *Hub) Done() <-chan struct{} {
	return h.doneCh
}

// Stop signals the Run loop to shut down. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

// Wait blocks until the Run loop has completely finished.
func (h *Hub) Wait() {
	<-h.doneCh
}

func (h *Hub) Run() {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.cfg.SweepInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case ev := <-h.events:
			start := time.Now()
			name := h.dispatch(ev)
			EventProcessingDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		case now := <-ticker.C:
			start := time.Now()
			h.sweepIdle(now)
			EventProcessingDuration.WithLabelValues("sweep").Observe(time.Since(start).Seconds())
		case <-h.stopCh:
			h.shutdown()
			return
		}
	}
}

func (h *Hub) dispatch(ev Event) string {
	switch ev.Type {
	case EventConnect:
		h.conns[ev.Client.ID] = ev.Client
		ConnectionsTotal.Inc()
		return "connect"
	case EventLine:
		h.engine.HandleLine(ev.Client, ev.Line)
		return "line"
	case EventDisconnect:
		h.teardown(ev.Client, ev.Cause)
		return "disconnect"
	}
	return "unknown"
}

// teardown is the single exit path for a connection, reachable from stream
// end, stream error, idle eviction, and shutdown. Invoking it again for the
// same connection is a no-op: the session's disconnecting flag and the
// client's closed flag each short-circuit a second trigger.
func (h *Hub) teardown(c *Client, cause DisconnectCause) {
	if c.closed {
		return
	}

	if sess, ok := h.reg.LookupByConn(c); ok {
		if sess.disconnecting {
			return
		}
		sess.disconnecting = true
		// Remove before announcing so the name is immediately reusable
		// and the broadcast reaches only the remaining sessions.
		h.reg.Remove(sess.Username)
		h.router.BroadcastAll("INFO " + sess.Username + " disconnected")
		h.logger.Info("session closed", "username", sess.Username, "cause", cause, "conn_id", c.ID)
	} else {
		h.logger.Info("connection closed", "cause", cause, "conn_id", c.ID)
	}

	delete(h.conns, c.ID)
	c.closed = true
	// The writer drains what is still buffered (the eviction or shutdown
	// notice, typically) and then closes the connection. The deadline
	// bounds how long a stalled peer can hold that up. The reader unblocks
	// when the connection closes.
	_ = c.Conn.SetWriteDeadline(time.Now().Add(teardownWriteGrace))
	close(c.Out)

	ConnectedSessions.Set(float64(h.reg.Len()))
	DisconnectsTotal.WithLabelValues(string(cause)).Inc()
}

// shutdown announces closure to every session and force-closes every live
// connection, logged-in or not. The registry is cleared first so the closes
// do not broadcast a disconnect per user.
func (h *Hub) shutdown() {
	h.router.BroadcastAll("INFO server-shutting-down")

	for _, s := range h.reg.All() {
		s.disconnecting = true
		h.reg.Remove(s.Username)
	}

	clients := make([]*Client, 0, len(h.conns))
	for _, c := range h.conns {
		clients = append(clients, c)
	}
	for _, c := range clients {
		h.teardown(c, CauseShutdown)
	}

	h.logger.Info("hub stopped")
}
