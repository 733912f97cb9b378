package report

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the upstream client and the lookup service.
var (
	// ErrNotFound means the upstream holds no data for the requested
	// location and period. It is a definitive answer, not a failure.
	ErrNotFound = errors.New("no upstream data for location and period")

	// ErrRateLimited means the upstream signaled throttling.
	ErrRateLimited = errors.New("upstream rate limit exceeded")

	// ErrUnavailable is returned by Lookup only when zero periods in the
	// requested range could be resolved from either cache or upstream.
	ErrUnavailable = errors.New("no period could be resolved from cache or upstream")
)

// NetworkError wraps a transport-level failure (unreachable host,
// timeout, non-success status) talking to the upstream API.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError means the upstream response did not parse into
// the expected schema.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed upstream response: %s", e.Reason)
}
