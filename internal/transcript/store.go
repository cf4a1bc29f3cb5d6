// Package transcript holds the append-only message history for one widget session.
package transcript

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meetvaani/vaani/internal/model/chat"
)

var (
	ErrInvalidSender = errors.New("sender must be user or agent")
	ErrEmptyMessage  = errors.New("message text is empty")
)

// Observer is invoked after a message becomes visible in the transcript.
// The console uses it to render the newest entry.
type Observer func(chat.Message)

// Store encapsulates the ordered transcript. Messages are immutable once
// appended and there is no removal operation.
type Store struct {
	mu        sync.RWMutex
	sessionID string
	messages  []chat.Message
	observers []Observer
}

// NewStore bootstraps an empty transcript bound to a session.
func NewStore(sessionID string) *Store {
	return &Store{
		sessionID: sessionID,
		messages:  make([]chat.Message, 0, 16),
	}
}

// SessionID returns the session this transcript belongs to.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Subscribe registers an observer for future appends.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Append stores a message at the end of the transcript, assigning its ID and
// timestamp when absent, and notifies observers once the append is visible.
func (s *Store) Append(message chat.Message) (chat.Message, error) {
	if message.Sender != chat.SenderUser && message.Sender != chat.SenderAgent {
		return chat.Message{}, ErrInvalidSender
	}
	if message.Text == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	message.SessionID = s.sessionID
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	s.messages = append(s.messages, message)
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(message)
	}

	return message, nil
}

// Messages returns a defensive copy of the transcript in insertion order.
func (s *Store) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Len reports the number of messages appended so far.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the newest message, if any.
func (s *Store) Last() (chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.messages) == 0 {
		return chat.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
