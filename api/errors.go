package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoToken is returned by authenticated calls made without a bearer token.
	// No request is sent.
	ErrNoToken = errors.New("api: not authenticated")

	// ErrUnauthorized matches 401 and 403 responses.
	ErrUnauthorized = errors.New("api: unauthorized")

	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("api: not found")
)

// Error is a non-2xx response from the API.
type Error struct {
	Op      string
	Status  int
	Message string // server-provided, may be empty
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s: %d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is match ErrUnauthorized and ErrNotFound by status.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// UserMessage returns the server's message when err carries one, otherwise
// fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Reason is like UserMessage but falls back to the status text, for
// messages of the form "Failed to delete project: <reason>".
func Reason(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return http.StatusText(apiErr.Status)
	}
	if errors.Is(err, ErrNoToken) {
		return "Authentication required"
	}
	return "Server unreachable"
}
