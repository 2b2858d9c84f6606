package chat

import (
	"errors"
	"log/slog"
	"strings"
)

const maxMessageLen = 512

// Engine parses one line at a time and dispatches it against the registry.
// It runs only on the hub goroutine.
type Engine struct {
	reg    *Registry
	router *Router
	logger *slog.Logger
}

func NewEngine(reg *Registry, router *Router, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{reg: reg, router: router, logger: logger}
}

// HandleLine processes one inbound line from c. Blank lines are ignored
// entirely; any other line counts as activity for the bound session, whether
// or not the command succeeds.
func (e *Engine) HandleLine(c *Client, raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}

	verb, rest, _ := strings.Cut(line, " ")
	verb = strings.ToUpper(verb)

	sess, loggedIn := e.reg.LookupByConn(c)
	if loggedIn {
		e.reg.Touch(sess)
	}

	CommandsTotal.WithLabelValues(metricVerb(verb)).Inc()

	if verb == "LOGIN" {
		e.handleLogin(c, sess, rest)
		return
	}
	if !loggedIn {
		e.router.SendTo(c, "ERR not-logged-in")
		return
	}

	switch verb {
	case "MSG":
		e.handleMsg(sess, rest)
	case "WHO":
		e.handleWho(sess)
	case "DM":
		e.handleDM(sess, rest)
	case "PING":
		e.router.SendTo(c, "PONG")
	default:
		e.router.SendTo(c, "ERR unknown-command")
	}
}

func (e *Engine) handleLogin(c *Client, sess *Session, rest string) {
	if sess != nil {
		e.router.SendTo(c, "ERR already-logged-in")
		return
	}

	s, err := e.reg.Register(strings.TrimSpace(rest), c)
	switch {
	case errors.Is(err, ErrNameInvalid):
		e.router.SendTo(c, "ERR invalid-username")
		return
	case errors.Is(err, ErrNameTaken):
		e.router.SendTo(c, "ERR username-taken")
		return
	case err != nil:
		e.router.SendTo(c, "ERR invalid-username")
		return
	}

	e.router.SendTo(c, "OK")
	e.router.BroadcastExcluding("INFO "+s.Username+" connected", c)
	ConnectedSessions.Set(float64(e.reg.Len()))

	e.logger.Info("user logged in", "username", s.Username, "conn_id", c.ID)
}

func (e *Engine) handleMsg(sess *Session, rest string) {
	text := clipMessage(rest)
	if text == "" {
		e.router.SendTo(sess.Client, "ERR empty-message")
		return
	}
	// Sender receives its own message through the broadcast.
	e.router.BroadcastAll("MSG " + sess.Username + " " + text)
}

func (e *Engine) handleWho(sess *Session) {
	all := e.reg.All()
	if len(all) == 0 {
		e.router.SendTo(sess.Client, "INFO no-users-online")
		return
	}
	for _, s := range all {
		e.router.SendTo(sess.Client, "USER "+s.Username)
	}
}

func (e *Engine) handleDM(sess *Session, rest string) {
	args := strings.Fields(rest)
	if len(args) < 2 {
		e.router.SendTo(sess.Client, "ERR invalid-dm-format")
		return
	}

	target := args[0]
	text := clipMessage(strings.Join(args[1:], " "))
	if text == "" {
		e.router.SendTo(sess.Client, "ERR empty-message")
		return
	}

	receiver, ok := e.reg.LookupByName(target)
	if !ok || receiver.Client.closed {
		e.router.SendTo(sess.Client, "ERR user-not-found")
		return
	}

	// Two independent best-effort sends: a delivery failure to the target
	// does not withhold the sender's acknowledgment.
	e.router.SendTo(receiver.Client, "DM "+sess.Username+" "+text)
	e.router.SendTo(sess.Client, "DM-SENT "+receiver.Username)
}

func clipMessage(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen]
	}
	return text
}

func metricVerb(verb string) string {
	switch verb {
	case "LOGIN", "MSG", "WHO", "DM", "PING":
		return strings.ToLower(verb)
	default:
		return "unknown"
	}
}
