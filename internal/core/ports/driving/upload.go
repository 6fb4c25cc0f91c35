package driving

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// UploadService drives a single document upload.
type UploadService interface {
	// Upload validates the selection, sends it and returns the new session.
	Upload(ctx context.Context, file *domain.UploadFile) (*domain.Session, error)

	// Pending reports whether an upload is outstanding.
	Pending() domain.PendingOperation
}
