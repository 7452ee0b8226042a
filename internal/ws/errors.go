package ws

import (
	"errors"
	"fmt"
)

// User-facing outcomes; the HTTP layer maps each one to a status code
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrRoomNameTooShort  = errors.New("room name too short")
	ErrUsernameTooShort  = errors.New("username too short")
)

// invariantError marks a broken internal precondition. It is raised with panic
// and recovered at the room goroutine or the HTTP request boundary.
type invariantError struct{ msg string }

func (e invariantError) Error() string { return "invariant violated: " + e.msg }

func invariant(format string, args ...any) {
	panic(invariantError{msg: fmt.Sprintf(format, args...)})
}
