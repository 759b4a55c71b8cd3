package chat

import "errors"

// ErrEmptyInput is returned when a message consists only of whitespace.
// The conversation is never mutated in that case.
var ErrEmptyInput = errors.New("message text is empty")

// ErrInvalidTarget is returned when an operation references a turn that
// does not exist or has the wrong author for the operation.
type ErrInvalidTarget struct {
	ID string
}

func (e ErrInvalidTarget) Error() string {
	if e.ID == "" {
		return "invalid target turn"
	}

	return "invalid target turn: " + e.ID
}
