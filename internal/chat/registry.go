package chat

import (
	"sort"
	"strings"
	"time"
)

const maxUsernameLen = 32

// Session binds a username to a live connection.
type Session struct {
	Username     string
	Client       *Client
	LastActivity time.Time

	// disconnecting guards teardown: once set, teardown for this session
	// must not run again.
	disconnecting bool
}

// Registry is the authoritative name→session mapping plus the reverse
// connection-id→session index. Both maps are kept in lockstep and are only
// accessed from the hub goroutine (single-writer ownership), so no locking
// is needed here.
type Registry struct {
	byName map[string]*Session
	byConn map[string]*Session // keyed by Client.ID
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Session),
		byConn: make(map[string]*Session),
	}
}

// Register creates a session for username on c. The existence check and the
// insert are one step; no caller can observe an intermediate state.
func (r *Registry) Register(username string, c *Client) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLen {
		return nil, ErrNameInvalid
	}
	if _, exists := r.byName[username]; exists {
		return nil, ErrNameTaken
	}

	s := &Session{
		Username:     username,
		Client:       c,
		LastActivity: time.Now(),
	}
	r.byName[username] = s
	r.byConn[c.ID] = s
	return s, nil
}

func (r *Registry) LookupByName(username string) (*Session, bool) {
	s, ok := r.byName[username]
	return s, ok
}

// LookupByConn resolves the session for a connection handle. Inbound events
// are addressed by connection, not name.
func (r *Registry) LookupByConn(c *Client) (*Session, bool) {
	s, ok := r.byConn[c.ID]
	return s, ok
}

// Remove deletes the session from both indexes. No-op if absent.
func (r *Registry) Remove(username string) {
	s, ok := r.byName[username]
	if !ok {
		return
	}
	delete(r.byName, username)
	delete(r.byConn, s.Client.ID)
}

// All returns a point-in-time snapshot of every session, sorted by username
// so enumeration order is deterministic.
func (r *Registry) All() []*Session {
	sessions := make([]*Session, 0, len(r.byName))
	for _, s := range r.byName {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Username < sessions[j].Username
	})
	return sessions
}

func (r *Registry) Touch(s *Session) {
	s.LastActivity = time.Now()
}

func (r *Registry) Len() int {
	return len(r.byName)
}
