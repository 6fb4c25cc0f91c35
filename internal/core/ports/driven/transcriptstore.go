package driven

import "github.com/custodia-labs/docqa-cli/internal/core/domain"

// TranscriptStore holds the ordered messages of exactly one session.
// Implementations never reorder or remove individual messages.
type TranscriptStore interface {
	// Reset discards all messages and scopes the store to sessionID.
	Reset(sessionID string)

	// Discard removes all messages and leaves the store unscoped.
	Discard()

	// SessionID returns the session the store is scoped to, or "".
	SessionID() string

	// Append adds a message at the end and returns its index.
	Append(msg domain.Message) int

	// Messages returns a copy of all messages in order.
	Messages() []domain.Message

	// Len returns the number of messages.
	Len() int
}
