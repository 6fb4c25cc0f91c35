package driving

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// SessionController owns the single active document session and mediates
// between uploading, chatting and clearing.
type SessionController interface {
	// Active returns a copy of the active session, or nil when absent.
	Active() *domain.Session

	// Mode reports whether upload or chat operations are reachable.
	Mode() domain.Mode

	// Upload sends a document and adopts the resulting session.
	// It requires that no session is active.
	Upload(ctx context.Context, file *domain.UploadFile) (*domain.Session, error)

	// AdoptSession installs a session created by a successful upload.
	AdoptSession(session *domain.Session) error

	// ClearSession deletes the active session on the server. The session
	// stays active unless the server confirms the deletion.
	ClearSession(ctx context.Context) error

	// Ask submits a question against the active session and waits for the reply.
	Ask(ctx context.Context, text string) ([]domain.Message, error)

	// Post appends a question against the active session without waiting.
	Post(text string) (*domain.Turn, error)

	// Resolve completes a posted question and returns the bot reply.
	// A turn that is not the pending one is refused.
	Resolve(ctx context.Context, turn *domain.Turn) (domain.Message, error)

	// Transcript returns a copy of the active session's messages.
	Transcript() []domain.Message

	// Snapshot captures all display state at once.
	Snapshot() domain.Snapshot
}
