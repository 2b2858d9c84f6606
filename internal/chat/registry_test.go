package chat

import (
	"strings"
	"testing"
	"time"
)

func TestRegistry_RegisterRejectsDuplicateUsername(t *testing.T) {
	r := NewRegistry()
	c1 := newPipeClient(t)
	c2 := newPipeClient(t)

	if _, err := r.Register("alice", c1); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if _, err := r.Register("alice", c2); err != ErrNameTaken {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestRegistry_RegisterValidatesUsername(t *testing.T) {
	r := NewRegistry()
	c := newPipeClient(t)

	if _, err := r.Register("", c); err != ErrNameInvalid {
		t.Fatalf("empty name: expected ErrNameInvalid, got %v", err)
	}
	if _, err := r.Register("   ", c); err != ErrNameInvalid {
		t.Fatalf("whitespace name: expected ErrNameInvalid, got %v", err)
	}
	long := strings.Repeat("x", maxUsernameLen+1)
	if _, err := r.Register(long, c); err != ErrNameInvalid {
		t.Fatalf("long name: expected ErrNameInvalid, got %v", err)
	}
	if _, err := r.Register("  alice  ", c); err != nil {
		t.Fatalf("trimmed name: expected nil, got %v", err)
	}
	if _, ok := r.LookupByName("alice"); !ok {
		t.Fatal("expected trimmed name to be registered as alice")
	}
}

func TestRegistry_ReverseLookupMatchesForward(t *testing.T) {
	r := NewRegistry()
	c := newPipeClient(t)

	s, err := r.Register("bob", c)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, ok := r.LookupByConn(c)
	if !ok || got != s {
		t.Fatalf("reverse lookup mismatch: got %v ok=%v", got, ok)
	}

	r.Remove("bob")
	if _, ok := r.LookupByConn(c); ok {
		t.Fatal("reverse entry should be gone after Remove")
	}
	if _, ok := r.LookupByName("bob"); ok {
		t.Fatal("forward entry should be gone after Remove")
	}
}

func TestRegistry_RemoveFreesName(t *testing.T) {
	r := NewRegistry()
	c1 := newPipeClient(t)
	c2 := newPipeClient(t)

	if _, err := r.Register("alice", c1); err != nil {
		t.Fatalf("register: %v", err)
	}
	r.Remove("alice")
	if _, err := r.Register("alice", c2); err != nil {
		t.Fatalf("expected name to be reusable after Remove, got %v", err)
	}

	// Remove of an absent name is a no-op.
	r.Remove("nobody")
}

func TestRegistry_AllIsSortedSnapshot(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"carol", "alice", "bob"} {
		if _, err := r.Register(name, newPipeClient(t)); err != nil {
			t.Fatalf("register(%s): %v", name, err)
		}
	}

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	for i, want := range []string{"alice", "bob", "carol"} {
		if all[i].Username != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, all[i].Username)
		}
	}

	// Mutating the registry must not disturb an already-taken snapshot.
	r.Remove("bob")
	if len(all) != 3 {
		t.Fatal("snapshot changed under mutation")
	}
}

func TestRegistry_TouchAdvancesActivity(t *testing.T) {
	r := NewRegistry()
	s, err := r.Register("alice", newPipeClient(t))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	s.LastActivity = time.Now().Add(-time.Hour)
	r.Touch(s)
	if time.Since(s.LastActivity) > time.Minute {
		t.Fatal("Touch did not advance LastActivity")
	}
}
