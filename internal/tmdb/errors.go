package tmdb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the upstream service has no such resource.
	ErrNotFound = errors.New("tmdb: resource not found")
	// ErrMissingResults means a listing body had no results array.
	ErrMissingResults = errors.New("tmdb: response missing results array")
	// ErrMalformed means the body could not be decoded.
	ErrMalformed = errors.New("tmdb: malformed response body")
	// ErrUnavailable means the circuit breaker rejected the call.
	ErrUnavailable = errors.New("tmdb: upstream temporarily unavailable")
)

// StatusError is returned for non-2xx upstream responses other than 404.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tmdb: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("tmdb: unexpected status %d: %s", e.Code, e.Message)
}
