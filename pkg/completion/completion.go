// Package completion is the boundary to the hosted generative-language
// service. The rest of the system treats it as an opaque call that turns an
// ordered conversation history into a single text completion or a failure.
package completion

import "context"

// Message is one prior turn of context for a completion request.
type Message struct {
	Role    string `json:"role"` // RoleUser or RoleAssistant
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completer produces a text completion for a conversation history. The last
// message in the history is the prompt being answered. Implementations
// return either the completion text or an *Error describing the failure.
type Completer interface {
	Complete(ctx context.Context, history []Message) (string, error)
}
