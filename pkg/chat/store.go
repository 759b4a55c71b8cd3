package chat

import "sync"

// Event describes a single turn mutation. Observers receive one event per
// store mutation so the presentation layer can re-render incrementally.
type Event struct {
	TurnID  string
	Author  Author
	Text    string
	Status  Status
	ErrText string
}

// Observer receives change notifications. Observers are called outside the
// store's lock and may read back into the store.
type Observer func(Event)

// Store owns the ordered conversation. All mutations notify subscribed
// observers with the changed turn's id and new state. A cleared event has
// an empty TurnID.
type Store struct {
	mu        sync.RWMutex
	turns     []*Turn
	observers []Observer
}

func NewStore() *Store {
	return &Store{}
}

// Subscribe registers an observer for subsequent mutations.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Append adds a new turn at the end of the conversation. User turns are
// created complete; assistant turns are created pending.
func (s *Store) Append(author Author, text string) (Turn, error) {
	status := StatusComplete
	switch author {
	case AuthorUser:
	case AuthorAssistant:
		status = StatusPending
	default:
		return Turn{}, ErrInvalidTarget{}
	}

	s.mu.Lock()
	t := newTurn(author, text, status)
	s.turns = append(s.turns, t)
	snap := t.snapshot()
	s.mu.Unlock()

	s.notify(snap)
	return snap, nil
}

// Edit replaces the text of a user turn, pushing the previous text onto the
// turn's history. Editing any other turn fails with ErrInvalidTarget.
func (s *Store) Edit(id, text string) error {
	s.mu.Lock()
	t := s.find(id)
	if t == nil || t.Author != AuthorUser {
		s.mu.Unlock()
		return ErrInvalidTarget{ID: id}
	}
	t.History = append(t.History, t.Text)
	t.Text = text
	snap := t.snapshot()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// History returns the prior texts of a turn, oldest first. A never-edited
// turn has an empty history.
func (s *Store) History(id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.find(id)
	if t == nil {
		return nil, ErrInvalidTarget{ID: id}
	}

	return append([]string(nil), t.History...), nil
}

// Get returns a copy of a single turn.
func (s *Store) Get(id string) (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.find(id)
	if t == nil {
		return Turn{}, false
	}

	return t.snapshot(), true
}

// Turns returns a copy of the whole conversation in chronological order.
func (s *Store) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Turn, len(s.turns))
	for i, t := range s.turns {
		out[i] = t.snapshot()
	}

	return out
}

// TurnsThrough returns a copy of the conversation truncated to the given
// turn and everything before it.
func (s *Store) TurnsThrough(id string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, t := range s.turns {
		if t.ID == id {
			out := make([]Turn, i+1)
			for j := 0; j <= i; j++ {
				out[j] = s.turns[j].snapshot()
			}
			return out, nil
		}
	}

	return nil, ErrInvalidTarget{ID: id}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Clear empties the conversation.
func (s *Store) Clear() {
	s.mu.Lock()
	s.turns = nil
	s.mu.Unlock()

	s.notifyEvent(Event{})
}

// ReplySlotFor returns the assistant turn that answers the given user turn,
// creating or resetting it as needed. An existing reply immediately after
// the user turn is reset to pending with its text cleared; otherwise a fresh
// pending assistant turn is inserted right after the user turn.
func (s *Store) ReplySlotFor(userID string) (Turn, error) {
	s.mu.Lock()

	idx := -1
	for i, t := range s.turns {
		if t.ID == userID {
			idx = i
			break
		}
	}
	if idx == -1 || s.turns[idx].Author != AuthorUser {
		s.mu.Unlock()
		return Turn{}, ErrInvalidTarget{ID: userID}
	}

	var slot *Turn
	if idx+1 < len(s.turns) && s.turns[idx+1].Author == AuthorAssistant {
		slot = s.turns[idx+1]
		slot.Text = ""
		slot.Status = StatusPending
		slot.ErrText = ""
	} else {
		slot = newTurn(AuthorAssistant, "", StatusPending)
		s.turns = append(s.turns, nil)
		copy(s.turns[idx+2:], s.turns[idx+1:])
		s.turns[idx+1] = slot
	}
	snap := slot.snapshot()
	s.mu.Unlock()

	s.notify(snap)
	return snap, nil
}

// SetComplete records a successful completion on a pending assistant turn.
func (s *Store) SetComplete(id, text string) error {
	return s.resolve(id, StatusComplete, text, "")
}

// SetFailed records a failed completion on a pending assistant turn. The
// message is kept for display in place of a response.
func (s *Store) SetFailed(id, message string) error {
	return s.resolve(id, StatusFailed, "", message)
}

// resolve transitions a pending assistant turn to a terminal status. Turns
// already complete or failed can only be touched again through ReplySlotFor,
// which takes them back to pending first.
func (s *Store) resolve(id string, status Status, text, errText string) error {
	s.mu.Lock()
	t := s.find(id)
	if t == nil || t.Author != AuthorAssistant || t.Status != StatusPending {
		s.mu.Unlock()
		return ErrInvalidTarget{ID: id}
	}
	t.Status = status
	t.Text = text
	t.ErrText = errText
	snap := t.snapshot()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

func (s *Store) find(id string) *Turn {
	for _, t := range s.turns {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Store) notify(snap Turn) {
	s.notifyEvent(Event{
		TurnID:  snap.ID,
		Author:  snap.Author,
		Text:    snap.Text,
		Status:  snap.Status,
		ErrText: snap.ErrText,
	})
}

func (s *Store) notifyEvent(e Event) {
	s.mu.RLock()
	obs := append([]Observer(nil), s.observers...)
	s.mu.RUnlock()

	for _, fn := range obs {
		fn(e)
	}
}
