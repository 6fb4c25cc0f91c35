package driven

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// DocumentQAClient is the single gateway to the remote question-answering service.
//
// Every method issues exactly one request. Failures are reported as *domain.Error:
// KindService when the service answered with a non-success status, and
// KindTransport when no usable response was obtained.
type DocumentQAClient interface {
	// Upload sends a document and returns the session the server created for it.
	Upload(ctx context.Context, file *domain.UploadFile) (*domain.UploadResult, error)

	// Ask asks a question scoped to a session.
	Ask(ctx context.Context, sessionID, query string) (*domain.Answer, error)

	// ClearSession deletes the server-side context of a session.
	ClearSession(ctx context.Context, sessionID string) error
}
