package github

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthExpired maps a provider-reported 401: the credential is no
	// longer usable and the client should re-run the authorization flow.
	ErrAuthExpired = errors.New("github: credential rejected")

	// ErrNameConflict maps a provider-reported 422 on repository
	// creation: the name is already taken. Surfaced, never retried with
	// a mutated name.
	ErrNameConflict = errors.New("github: repository name already exists")
)

// APIError carries the status and truncated body of an unexpected
// provider response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: unexpected status %d: %s", e.Status, e.Body)
}
