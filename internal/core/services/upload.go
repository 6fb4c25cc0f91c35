package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure UploadService implements the interface.
var _ driving.UploadService = (*UploadService)(nil)

// UploadService validates a file selection, uploads it and builds the session.
// Every failure is reported through the error channel.
type UploadService struct {
	client   driven.DocumentQAClient
	errors   *ErrorChannel
	maxBytes int64
	now      func() time.Time

	mu      sync.Mutex
	pending domain.PendingOperation
}

// NewUploadService creates a new upload service.
// maxBytes rejects larger files locally; 0 disables the check.
func NewUploadService(client driven.DocumentQAClient, errCh *ErrorChannel, maxBytes int64) *UploadService {
	if errCh == nil {
		errCh = NewErrorChannel()
	}
	return &UploadService{
		client:   client,
		errors:   errCh,
		maxBytes: maxBytes,
		now:      time.Now,
		pending:  domain.PendingNone,
	}
}

// Upload sends file and returns an active session built from the response.
func (s *UploadService) Upload(ctx context.Context, file *domain.UploadFile) (*domain.Session, error) {
	if err := s.begin(file); err != nil {
		s.errors.Report(err)
		return nil, err
	}
	defer s.finish()

	logger.Debug("Uploading %q (%d bytes)", file.Name, file.Size)

	result, err := s.client.Upload(context.WithoutCancel(ctx), file)
	if err != nil {
		logger.Warn("Upload of %q failed: %v", file.Name, err)
		s.errors.Report(err)
		return nil, err
	}

	logger.Info("Upload of %q created session %s", file.Name, result.SessionID)

	return &domain.Session{
		ID:        result.SessionID,
		FileName:  file.Name,
		Status:    domain.SessionActive,
		Message:   result.Message,
		CreatedAt: s.now(),
	}, nil
}

// Pending reports whether an upload is outstanding.
func (s *UploadService) Pending() domain.PendingOperation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// begin checks preconditions, clears the previous error and marks the upload pending.
func (s *UploadService) begin(file *domain.UploadFile) error {
	if file == nil || file.Content == nil {
		return domain.NewValidationError(domain.OpUpload, domain.DetailNoFile)
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return domain.NewValidationError(domain.OpUpload,
			fmt.Sprintf("file exceeds the upload limit of %d MB", s.maxBytes/(1024*1024)))
	}
	if s.client == nil {
		return domain.NewValidationError(domain.OpUpload, "service client not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != domain.PendingNone {
		return domain.NewValidationError(domain.OpUpload, domain.DetailUploadPending)
	}
	s.errors.Clear()
	s.pending = domain.PendingUploading
	return nil
}

func (s *UploadService) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = domain.PendingNone
}
