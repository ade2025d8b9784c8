package errors

import (
	"errors"
	"fmt"
)

// ErrNoIdentity is reported when no anonymous user id could be produced
var ErrNoIdentity = errors.New("no user identity available")

// ErrNoActiveMall is reported when a cart operation needs a mall and none is selected
var ErrNoActiveMall = errors.New("no active mall selected")

// ErrRequest represents a non-2xx response from the backend
type ErrRequest struct {
	Status  int
	Message string
}

func (e *ErrRequest) Error() string {
	if e.Message == "" {
		return "Request failed"
	}
	return e.Message
}

// ErrNotFound represents a missing backend resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnavailable is returned while the circuit breaker refuses calls
type ErrUnavailable struct {
	Service string
	Err     error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ErrUnavailable) Unwrap() error {
	return e.Err
}
