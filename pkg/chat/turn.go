// Package chat owns the conversation state: an ordered sequence of turns
// with per-turn edit history, completion status, and change notification
// for the presentation layer.
package chat

import "github.com/google/uuid"

// Author identifies who produced a turn.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Status tracks the lifecycle of an assistant turn. User turns are always
// StatusComplete.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Turn is a single message in the conversation.
type Turn struct {
	ID     string `json:"id"`
	Author Author `json:"author"`
	Text   string `json:"text"`

	// History holds the prior texts of an edited user turn, oldest first.
	// The current text is never duplicated here until it is superseded.
	History []string `json:"history,omitempty"`

	Status Status `json:"status"`

	// ErrText carries the failure message when Status is StatusFailed.
	ErrText string `json:"error,omitempty"`
}

func newTurn(author Author, text string, status Status) *Turn {
	return &Turn{
		ID:     uuid.NewString(),
		Author: author,
		Text:   text,
		Status: status,
	}
}

// snapshot returns a copy that is safe to hand outside the store's lock.
func (t *Turn) snapshot() Turn {
	c := *t
	if t.History != nil {
		c.History = append([]string(nil), t.History...)
	}
	return c
}
