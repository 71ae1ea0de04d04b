package activitypub

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotPublic           = errors.New("activity is not addressed to the public")
	ErrActorNotInCommunity = errors.New("actor is not a member of the community")
	ErrNotAModerator       = errors.New("actor is not a moderator of the community")
	ErrMalformed           = errors.New("malformed activity")
	ErrOriginMismatch      = errors.New("activity origin does not match its actor")
	ErrBannedFromSite      = errors.New("actor is banned from this site")

	ErrFetchBudgetExceeded = errors.New("fetch budget exceeded")
	ErrNotFound            = errors.New("object not found")
)

// ValidationError is returned when an activity fails verification.
// The activity is rejected as a whole and must not be retried.
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, format string, args ...any) error {
	return &ValidationError{Err: err, Detail: fmt.Sprintf(format, args...)}
}

// ResolutionError is returned when a reference could not be resolved,
// because it does not exist, the remote server failed, or the fetch
// budget ran out.
type ResolutionError struct {
	URI string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.URI, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// StatusCode maps err to the HTTP status reported to the sender of an
// activity.
func StatusCode(err error) int {
	var verr *ValidationError
	var rerr *ResolutionError
	switch {
	case errors.As(err, &verr):
		switch {
		case errors.Is(err, ErrActorNotInCommunity), errors.Is(err, ErrNotAModerator), errors.Is(err, ErrBannedFromSite):
			return http.StatusForbidden
		case errors.Is(err, ErrOriginMismatch):
			return http.StatusUnauthorized
		default:
			return http.StatusBadRequest
		}
	case errors.As(err, &rerr):
		if errors.Is(err, ErrNotFound) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
