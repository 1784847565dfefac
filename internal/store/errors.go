package store

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID has no stored problem.
var ErrSessionNotFound = errors.New("session not found")

// Error wraps a failed store operation. It reports itself as a server-side
// failure so callers can present a short message.
type Error struct {
	Op  string // e.g. "save problem"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ServerMessage returns the message shown for this failure.
func (e *Error) ServerMessage() string {
	if errors.Is(e.Err, ErrSessionNotFound) {
		return "Session not found"
	}
	return "Failed to " + e.Op
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
