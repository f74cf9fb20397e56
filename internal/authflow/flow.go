// Package authflow orchestrates the three-step OAuth dance against the
// session store: initiate, callback, status poll.
package authflow

import (
	"context"
	"errors"
	"fmt"

	"designify/internal/session"
)

// ErrInvalidCallback means the callback's state token does not name a
// live session; the code is never exchanged in that case.
var ErrInvalidCallback = errors.New("authflow: callback state does not match a known session")

// ErrNotConfigured means the hosting-provider integration has no app
// registration to authorize against.
var ErrNotConfigured = errors.New("authflow: oauth app is not configured")

// Provider is the slice of the hosting-provider OAuth surface the flow
// consumes.
type Provider interface {
	Configured() bool
	AuthorizeURL(state, redirectURL string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
}

// Flow drives one provider's authorization attempts. It owns no state of
// its own; all per-attempt state lives in the session store.
type Flow struct {
	sessions    *session.Store
	provider    Provider
	redirectURL string
}

func New(sessions *session.Store, provider Provider, redirectURL string) *Flow {
	return &Flow{sessions: sessions, provider: provider, redirectURL: redirectURL}
}

func (f *Flow) Configured() bool {
	return f.provider != nil && f.provider.Configured()
}

// Initiate creates a pending session and returns the authorization URL
// the user should visit plus the state token for later polling.
func (f *Flow) Initiate() (authURL, state string, err error) {
	if !f.Configured() {
		return "", "", ErrNotConfigured
	}
	state, err = f.sessions.Create()
	if err != nil {
		return "", "", err
	}
	return f.provider.AuthorizeURL(state, f.redirectURL), state, nil
}

// CompleteCallback exchanges the authorization code and attaches the
// resulting credential to the session named by state. On exchange
// failure the session stays pending, so a fresh callback with the same
// state can retry until the TTL runs out.
func (f *Flow) CompleteCallback(ctx context.Context, code, state string) error {
	if !f.sessions.Exists(state) {
		return ErrInvalidCallback
	}
	token, err := f.provider.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("authflow: exchange code: %w", err)
	}
	if err := f.sessions.Attach(state, token); err != nil {
		return fmt.Errorf("authflow: attach credential: %w", err)
	}
	return nil
}

// PollStatus answers a point-in-time query for the session named by
// state. Errors pass through from the session store: ErrNotFound for an
// unknown token, ErrExpired when the TTL has elapsed.
func (f *Flow) PollStatus(state string) (session.Status, error) {
	return f.sessions.Status(state)
}
