package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable indicates the notes server could not be reached.
	ErrUnavailable = errors.New("notes server unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("notes request timed out")

	// ErrNotFound indicates the requested note object does not exist.
	ErrNotFound = errors.New("note object not found")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("notes request retry attempts exhausted")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// retryable reports whether a failed attempt is worth repeating.
// Client errors will not change on a second try.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return true
}

func errorCode(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.As(err, &se):
		return fmt.Sprintf("HTTP_%d", se.Code)
	default:
		return "UNKNOWN"
	}
}
