package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a provider call outcome. Kinds are stable so the
// routing layer can map them to HTTP statuses without parsing messages.
type ErrorKind string

const (
	// KindNotFound means the provider has no data for the address. This is
	// a valid "no breach" outcome, not a failure.
	KindNotFound ErrorKind = "not_found"
	// KindBlocked means the provider refused the request (403), typically
	// anti-automation blocking. Degraded but retryable on a later run.
	KindBlocked ErrorKind = "blocked"
	// KindRateLimited means the provider returned 429.
	KindRateLimited ErrorKind = "rate_limited"
	// KindServerError means the provider returned a 5xx response.
	KindServerError ErrorKind = "server_error"
	// KindTimeout means the per-call deadline expired.
	KindTimeout ErrorKind = "timeout"
	// KindMalformed means the response body could not be decoded.
	KindMalformed ErrorKind = "malformed"
	// KindNetwork covers transport-level failures (DNS, refused, reset).
	KindNetwork ErrorKind = "network"
)

// Error is a classified provider failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int   // HTTP status, 0 for transport failures
	Err        error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %v", e.Kind, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("provider %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind of err, or an empty kind if err is not a
// provider error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsNotFound reports whether err is the provider's "no data" outcome.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
