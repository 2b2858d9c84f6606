package chat

import (
	"net"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Client is one accepted connection handle. It exists from accept until the
// hub tears it down; a Session is bound to it only after a successful LOGIN.
type Client struct {
	ID   string
	Conn net.Conn
	Out  chan string // outbound lines written by the writer goroutine

	limiter *rate.Limiter

	// closed is owned by the hub goroutine. Once set, Out has been closed
	// and no further sends are allowed.
	closed bool
}

func NewClient(conn net.Conn, cfg Config) *Client {
	return &Client{
		ID:      uuid.NewString(),
		Conn:    conn,
		Out:     make(chan string, cfg.OutBuffer),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}
}

type EventType int

const (
	EventConnect EventType = iota
	EventLine
	EventDisconnect
)

// DisconnectCause tags why a connection is being torn down.
type DisconnectCause string

const (
	CauseStreamEnd   DisconnectCause = "stream-end"
	CauseStreamError DisconnectCause = "stream-error"
	CauseIdleTimeout DisconnectCause = "idle-timeout"
	CauseShutdown    DisconnectCause = "shutdown"
)

// Event is the hub's unit of work. Every connect, line, and disconnect from
// every goroutine funnels through the hub's event channel so that chat state
// is only ever mutated by the hub goroutine.
type Event struct {
	Type   EventType
	Client *Client
	Line   string
	Cause  DisconnectCause
}

var (
	ErrNameTaken   = errorString("username_taken")
	ErrNameInvalid = errorString("username_invalid")
)

type errorString string

func (e errorString) Error() string { return string(e) }
