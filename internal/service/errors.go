package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/movies-api/internal/tmdb"
)

// Sentinel errors returned by the services.  Handlers translate them into
// HTTP statuses; anything else is an internal failure.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("upstream request failed")
	ErrInvalidUpstream = errors.New("invalid response structure")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrEmailTaken      = errors.New("email already registered")
)

// upstreamErr classifies an error from the upstream client.
func upstreamErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tmdb.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, tmdb.ErrMissingResults):
		return fmt.Errorf("%w: %v", ErrInvalidUpstream, err)
	default:
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
}

// ParseID converts a path segment into a positive upstream id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: id %q must be a positive integer", ErrInvalidInput, raw)
	}
	return id, nil
}
