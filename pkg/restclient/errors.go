package restclient

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any 404 answer.
	ErrNotFound = errors.New("resource not found")
	// ErrUnavailable wraps failures to reach the backend at all.
	ErrUnavailable = errors.New("backend unavailable")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}
