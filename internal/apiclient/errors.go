package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any *APIError carrying a 401.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response. Message is the body's "error" field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message returns the backend's error message carried by err, or fallback when err is
// not an *APIError or the backend sent none.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
