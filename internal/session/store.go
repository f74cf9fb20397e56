// Package session tracks pending and completed OAuth authorization
// attempts. A session is keyed by an unguessable state token; possession
// of the token is the only handle onto the session.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long an authorization attempt stays valid.
const DefaultTTL = 10 * time.Minute

// stateTokenBytes is the entropy of a state token. 32 bytes gives the
// 256 bits the capability semantics require.
const stateTokenBytes = 32

var (
	ErrNotFound = errors.New("session: unknown state token")
	ErrExpired  = errors.New("session: state token expired")
)

// Status reports the point-in-time view of one session.
type Status struct {
	Authenticated bool
	Token         string
}

type record struct {
	createdAt time.Time
	token     string
	hasToken  bool
}

// Store is an in-memory session registry with time-based expiry. All
// mutation is serialized by a single mutex; no session requires
// cross-token coordination.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*record
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*record),
	}
}

// Create registers a new pending session and returns its state token.
// Expired sessions are swept opportunistically here; correctness does
// not depend on sweep timing since Status checks TTL itself.
func (s *Store) Create() (string, error) {
	state, err := newStateToken()
	if err != nil {
		return "", fmt.Errorf("session: generate state token: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.sessions[state] = &record{createdAt: s.now()}
	return state, nil
}

// Attach stores the credential obtained for the session, moving it from
// pending to authorized. Attaching to an unknown or expired token fails.
func (s *Store) Attach(state, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[state]
	if !ok {
		return ErrNotFound
	}
	if s.expiredLocked(rec) {
		delete(s.sessions, state)
		return ErrExpired
	}
	rec.token = token
	rec.hasToken = true
	return nil
}

// Status answers a point-in-time poll. An expired session is deleted as
// a side effect of being observed expired.
func (s *Store) Status(state string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[state]
	if !ok {
		return Status{}, ErrNotFound
	}
	if s.expiredLocked(rec) {
		delete(s.sessions, state)
		return Status{}, ErrExpired
	}
	if !rec.hasToken {
		return Status{Authenticated: false}, nil
	}
	return Status{Authenticated: true, Token: rec.token}, nil
}

// Exists reports whether the token names a live session.
func (s *Store) Exists(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[state]
	return ok && !s.expiredLocked(rec)
}

// Len reports the number of sessions currently held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) expiredLocked(rec *record) bool {
	return s.now().Sub(rec.createdAt) > s.ttl
}

func (s *Store) sweepLocked() {
	for state, rec := range s.sessions {
		if s.expiredLocked(rec) {
			delete(s.sessions, state)
		}
	}
}

func newStateToken() (string, error) {
	buf := make([]byte, stateTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
