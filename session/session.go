// Package session implements the conversation controller. It mediates
// between the chat store and the request dispatcher: appending user turns,
// triggering completion requests, applying results back onto the store, and
// regenerating responses when a user turn is edited.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/neurocura/neurocura/pkg/chat"
	"github.com/neurocura/neurocura/pkg/completion"
	"github.com/neurocura/neurocura/pkg/dispatch"
)

// Session orchestrates a single conversation. All mutations are serialized
// behind its mutex; the dispatcher's worker goroutine never touches session
// or store state directly, its results arrive over a channel pumped by Run.
type Session struct {
	store      *chat.Store
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger

	mu          sync.Mutex
	outstanding string // request id allowed to write its result
	targetTurn  string // assistant turn the outstanding request fills
}

func New(store *chat.Store, dispatcher *dispatch.Dispatcher, logger *zap.Logger) *Session {
	return &Session{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Store exposes the conversation for read access and observer registration.
func (s *Session) Store() *chat.Store {
	return s.store
}

// Run applies dispatcher results until ctx is cancelled. It must be running
// for responses to appear in the conversation.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-s.dispatcher.Results():
			s.apply(res)
		}
	}
}

// Send appends a user turn and a pending assistant turn, then dispatches a
// completion request for the conversation up to and including the new user
// turn. Whitespace-only text is rejected with chat.ErrEmptyInput and
// nothing is mutated.
func (s *Session) Send(text string) (userID, assistantID string, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", "", chat.ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.store.Append(chat.AuthorUser, trimmed)
	if err != nil {
		return "", "", err
	}

	slot, err := s.store.ReplySlotFor(user.ID)
	if err != nil {
		return "", "", err
	}

	s.dispatchLocked(user.ID, slot.ID)
	return user.ID, slot.ID, nil
}

// Edit replaces the text of a user turn and regenerates its response. The
// assistant turn immediately following the edited turn is reset to pending
// (or created if absent) and a fresh request is dispatched with the context
// truncated to the edited turn and earlier. Any in-flight request is
// superseded; its late result will not be written anywhere.
func (s *Session) Edit(turnID, text string) (assistantID string, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", chat.ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Edit(turnID, trimmed); err != nil {
		return "", err
	}

	slot, err := s.store.ReplySlotFor(turnID)
	if err != nil {
		return "", err
	}

	s.dispatchLocked(turnID, slot.ID)
	return slot.ID, nil
}

// History returns the prior texts of a turn, oldest first.
func (s *Session) History(turnID string) ([]string, error) {
	return s.store.History(turnID)
}

// Reset cancels any outstanding request and empties the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispatcher.Cancel()
	s.outstanding = ""
	s.targetTurn = ""
	s.store.Clear()

	s.logger.Info("conversation reset")
}

// dispatchLocked builds the completion context ending at the given user
// turn and submits it. Caller holds s.mu.
func (s *Session) dispatchLocked(userID, assistantID string) {
	turns, err := s.store.TurnsThrough(userID)
	if err != nil {
		// The user turn was just written under the same lock.
		s.logger.Error("failed to snapshot conversation", zap.String("turn_id", userID), zap.Error(err))
		return
	}

	history := make([]completion.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Author {
		case chat.AuthorUser:
			history = append(history, completion.Message{Role: completion.RoleUser, Content: t.Text})
		case chat.AuthorAssistant:
			// Only settled responses belong in the context.
			if t.Status == chat.StatusComplete {
				history = append(history, completion.Message{Role: completion.RoleAssistant, Content: t.Text})
			}
		}
	}

	s.outstanding = s.dispatcher.Submit(history, assistantID)
	s.targetTurn = assistantID
}

// apply writes a dispatcher result onto its target turn. Results from
// superseded requests are dropped by id comparison; the dispatcher performs
// the same check on its side.
func (s *Session) apply(res dispatch.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.RequestID != s.outstanding {
		s.logger.Debug("ignoring stale result", zap.String("request_id", res.RequestID))
		return
	}
	target := s.targetTurn
	s.outstanding = ""
	s.targetTurn = ""

	if res.Err != nil {
		message := res.Err.Error()
		var cerr *completion.Error
		if errors.As(res.Err, &cerr) {
			message = cerr.Message
		}

		s.logger.Warn("completion failed",
			zap.String("turn_id", target),
			zap.Error(res.Err),
		)

		if err := s.store.SetFailed(target, message); err != nil {
			s.logger.Error("failed to record failure", zap.String("turn_id", target), zap.Error(err))
		}
		return
	}

	if err := s.store.SetComplete(target, res.Text); err != nil {
		s.logger.Error("failed to record completion", zap.String("turn_id", target), zap.Error(err))
	}
}
