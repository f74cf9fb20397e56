package session

import (
	"testing"
	"time"
)

func TestCreateThenStatusIsPending(t *testing.T) {
	s := NewStore(DefaultTTL)
	state, err := s.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if state == "" {
		t.Fatalf("Create() returned empty state")
	}
	st, err := s.Status(state)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st.Authenticated {
		t.Fatalf("fresh session reported authenticated")
	}
	if st.Token != "" {
		t.Fatalf("fresh session leaked a token: %q", st.Token)
	}
}

func TestStateTokensAreUniqueAndLong(t *testing.T) {
	s := NewStore(DefaultTTL)
	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		state, err := s.Create()
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		// 32 random bytes base64url-encoded without padding is 43 chars.
		if len(state) < 43 {
			t.Fatalf("state token too short: %d chars", len(state))
		}
		if _, dup := seen[state]; dup {
			t.Fatalf("duplicate state token %q", state)
		}
		seen[state] = struct{}{}
	}
}

func TestAttachTransitionsToAuthorized(t *testing.T) {
	s := NewStore(DefaultTTL)
	state, _ := s.Create()
	if err := s.Attach(state, "gho_secret"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	st, err := s.Status(state)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !st.Authenticated || st.Token != "gho_secret" {
		t.Fatalf("Status() = %+v, want authenticated with token", st)
	}
}

func TestAttachUnknownState(t *testing.T) {
	s := NewStore(DefaultTTL)
	if err := s.Attach("missing", "tok"); err != ErrNotFound {
		t.Fatalf("Attach() error = %v, want ErrNotFound", err)
	}
}

func TestStatusUnknownState(t *testing.T) {
	s := NewStore(DefaultTTL)
	if _, err := s.Status("missing"); err != ErrNotFound {
		t.Fatalf("Status() error = %v, want ErrNotFound", err)
	}
}

func TestStatusExpiryBoundary(t *testing.T) {
	s := NewStore(10 * time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }
	state, _ := s.Create()

	// One second shy of the TTL: still pending.
	s.now = func() time.Time { return base.Add(10*time.Minute - time.Second) }
	if st, err := s.Status(state); err != nil || st.Authenticated {
		t.Fatalf("Status() before TTL = %+v, %v", st, err)
	}

	// Past the TTL: expired and removed.
	s.now = func() time.Time { return base.Add(10*time.Minute + time.Second) }
	if _, err := s.Status(state); err != ErrExpired {
		t.Fatalf("Status() after TTL error = %v, want ErrExpired", err)
	}
	if _, err := s.Status(state); err != ErrNotFound {
		t.Fatalf("Status() after deletion error = %v, want ErrNotFound", err)
	}
}

func TestCreateSweepsExpiredSessions(t *testing.T) {
	s := NewStore(time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }
	for i := 0; i < 3; i++ {
		if _, err := s.Create(); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	fresh, _ := s.Create()
	if s.Len() != 1 {
		t.Fatalf("Len() after sweep = %d, want 1", s.Len())
	}
	if !s.Exists(fresh) {
		t.Fatalf("fresh session missing after sweep")
	}
}

func TestAttachAfterExpiryFails(t *testing.T) {
	s := NewStore(time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }
	state, _ := s.Create()

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if err := s.Attach(state, "tok"); err != ErrExpired {
		t.Fatalf("Attach() error = %v, want ErrExpired", err)
	}
}
