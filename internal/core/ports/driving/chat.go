package driving

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// ChatService owns the transcript of the active session.
type ChatService interface {
	// Submit posts a question and resolves it before returning the
	// appended messages.
	Submit(ctx context.Context, session *domain.Session, text string) ([]domain.Message, error)

	// Post appends the user turn and marks a query as pending.
	Post(session *domain.Session, text string) (*domain.Turn, error)

	// Resolve issues the posted question and appends exactly one bot turn.
	// A turn that is not the pending one is refused.
	Resolve(ctx context.Context, turn *domain.Turn) (domain.Message, error)

	// Transcript returns a copy of the messages in submission order.
	Transcript() []domain.Message

	// Pending reports whether a query is outstanding.
	Pending() domain.PendingOperation
}
