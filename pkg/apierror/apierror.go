// Package apierror defines the error taxonomy shared by the gateway core.
// Components wrap these sentinels with fmt.Errorf("...: %w", ...) so callers
// can classify failures with errors.Is without parsing messages.
package apierror

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated means the credential was missing, malformed, expired,
	// or failed verification. Never retried.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the credential verified but the principal is not
	// permitted: wrong tenant, wrong role, or device/key mismatch.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the resource id has no matching record.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable means a backing store or verifier timed out or was
	// unreachable. Safe for the caller to retry; the core never retries.
	ErrUnavailable = errors.New("unavailable")

	// ErrInvalidInput means the payload was malformed or a metric was out of
	// range. Never retried.
	ErrInvalidInput = errors.New("invalid input")
)

// FromContext maps a context failure from a store call to the taxonomy.
// Deadline expiry is an Unavailable condition, not an internal error.
func FromContext(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}

// HTTPStatus maps a classified error to its HTTP status code. Unclassified
// errors map to 500 so nothing in the taxonomy is silently swallowed.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
