package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized means the bearer token is missing, expired or malformed.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the token is valid but lacks scope on the target.
	ErrForbidden = errors.New("forbidden")
	// ErrActionNotFound means no action exists for the given id or resource.
	ErrActionNotFound = errors.New("action not found")
)

// InvalidTransitionError is returned when an action is asked to move to a
// state its current status does not allow. Current lets the caller resync.
type InvalidTransitionError struct {
	ActionID  string
	Current   ActionStatus
	Attempted ActionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %s: invalid transition to %s from %s", e.ActionID, e.Attempted, e.Current)
}

// TransientError wraps a provider error that survived the bounded retries.
type TransientError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("provider temporarily unavailable: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError wraps a provider error that must not be retried, such as an
// invalid subscription or a missing resource.
type PermanentError struct {
	Err    error
	Detail string
}

func (e *PermanentError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error { return e.Err }
