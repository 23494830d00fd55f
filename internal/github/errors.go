package github

import (
	"errors"
	"fmt"
)

// ErrNotFound means the repository or its latest release does not exist
// upstream. Never cached.
var ErrNotFound = errors.New("github: repository or release not found")

// ErrRateLimited means the API returned 403 and the releases-page fallback
// also failed. Never cached.
var ErrRateLimited = errors.New("github: rate limited and fallback failed")

// APIError carries an unexpected upstream status or a malformed body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github: API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("github: API returned status %d: %s", e.StatusCode, e.Message)
}

// TransportError wraps a network-level failure (timeout, DNS, TLS). The caller
// may retry manually; the resolver never caches it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("github: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
