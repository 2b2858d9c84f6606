package chat

import "log/slog"

// Router delivers protocol lines to connections. Every send is best-effort:
// a full buffer or closed connection drops the line without affecting other
// deliveries in the same operation.
type Router struct {
	reg    *Registry
	logger *slog.Logger
}

func NewRouter(reg *Registry, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{reg: reg, logger: logger}
}

// SendTo queues one line for c. Non-blocking: a slow or disconnected client
// never stalls the caller.
func (rt *Router) SendTo(c *Client, line string) {
	if c.closed {
		return
	}
	select {
	case c.Out <- line:
	default:
		DroppedWritesTotal.Inc()
		rt.logger.Debug("outbound buffer full, dropping line", "conn_id", c.ID)
	}
}

// BroadcastAll delivers line to every session, sender included. Iterates a
// snapshot so deliveries that trigger registry mutation cannot corrupt the
// enumeration.
func (rt *Router) BroadcastAll(line string) {
	for _, s := range rt.reg.All() {
		rt.SendTo(s.Client, line)
	}
}

// BroadcastExcluding delivers line to every session except the one bound to
// excluded.
func (rt *Router) BroadcastExcluding(line string, excluded *Client) {
	for _, s := range rt.reg.All() {
		if s.Client.ID == excluded.ID {
			continue
		}
		rt.SendTo(s.Client, line)
	}
}
