// Package memory provides in-memory implementations of driven port interfaces.
// Nothing stored here outlives the process.
package memory

import (
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure TranscriptStore implements the interface.
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// TranscriptStore is an in-memory implementation of driven.TranscriptStore.
type TranscriptStore struct {
	mu        sync.RWMutex
	sessionID string
	messages  []domain.Message
}

// NewTranscriptStore creates a new, unscoped transcript store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{
		messages: make([]domain.Message, 0),
	}
}

// Reset discards all messages and scopes the store to sessionID.
func (s *TranscriptStore) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = sessionID
	s.messages = make([]domain.Message, 0)
}

// Discard removes all messages and leaves the store unscoped.
func (s *TranscriptStore) Discard() {
	s.Reset("")
}

// SessionID returns the session the store is scoped to.
func (s *TranscriptStore) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Append adds a message at the end and returns its index.
func (s *TranscriptStore) Append(msg domain.Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.Sources = cloneStrings(msg.Sources)
	s.messages = append(s.messages, msg)
	return len(s.messages) - 1
}

// Messages returns a copy of all messages in order.
func (s *TranscriptStore) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Message, len(s.messages))
	for i, msg := range s.messages {
		msg.Sources = cloneStrings(msg.Sources)
		result[i] = msg
	}
	return result
}

// Len returns the number of messages.
func (s *TranscriptStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
