package chat

import "time"

// sweepIdle evicts every session whose last activity is older than the idle
// threshold. The victims are selected before any teardown runs, so an
// eviction cannot perturb the rest of the scan.
func (h *Hub) sweepIdle(now time.Time) {
	var expired []*Session
	for _, s := range h.reg.All() {
		if s.disconnecting {
			continue
		}
		if now.Sub(s.LastActivity) > h.cfg.IdleTimeout.Std() {
			expired = append(expired, s)
		}
	}

	for _, s := range expired {
		h.router.SendTo(s.Client, "INFO disconnected-due-to-inactivity")
		h.teardown(s.Client, CauseIdleTimeout)
		IdleEvictionsTotal.Inc()
		h.logger.Info("idle session evicted", "username", s.Username, "idle", now.Sub(s.LastActivity).String())
	}
}
