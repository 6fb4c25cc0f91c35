package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionController = (*SessionService)(nil)

// StatusSessionCleared is shown after the server confirms a clear.
const StatusSessionCleared = "Session cleared. You can now upload a new document."

// SessionService owns the single active session.
//
// Upload is only reachable while no session is active; chat and clear
// only while one is. The discriminant is the active session itself, so
// the rule holds for direct calls as well as for any presentation layer.
type SessionService struct {
	client   driven.DocumentQAClient
	uploader *UploadService
	chat     *ChatService
	errors   *ErrorChannel
	status   *Channel

	mu        sync.Mutex
	active    *domain.Session
	uploading bool
	clearing  bool
}

// NewSessionService creates a session controller over the given coordinators.
// The error channel must be the one the uploader reports to.
func NewSessionService(
	client driven.DocumentQAClient,
	uploader *UploadService,
	chat *ChatService,
	errCh *ErrorChannel,
) *SessionService {
	if errCh == nil {
		errCh = NewErrorChannel()
	}
	return &SessionService{
		client:   client,
		uploader: uploader,
		chat:     chat,
		errors:   errCh,
		status:   &Channel{},
	}
}

// Active returns a copy of the active session, or nil when absent.
func (s *SessionService) Active() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeCopy()
}

// Mode reports whether upload or chat operations are reachable.
func (s *SessionService) Mode() domain.Mode {
	if s.Active().IsActive() {
		return domain.ModeChat
	}
	return domain.ModeUpload
}

// Upload sends a document and adopts the resulting session.
func (s *SessionService) Upload(ctx context.Context, file *domain.UploadFile) (*domain.Session, error) {
	if err := s.beginUpload(); err != nil {
		s.errors.Report(err)
		return nil, err
	}
	defer s.finishUpload()

	session, err := s.uploader.Upload(ctx, file)
	if err != nil {
		s.status.Clear()
		return nil, err
	}

	if err := s.AdoptSession(session); err != nil {
		s.errors.Report(err)
		return nil, err
	}

	s.status.Set(session.Message)
	s.errors.Clear()

	copied := *session
	return &copied, nil
}

// AdoptSession installs a session created by a successful upload and
// starts an empty transcript for it.
func (s *SessionService) AdoptSession(session *domain.Session) error {
	if !session.IsActive() {
		return domain.NewValidationError(domain.OpUpload, domain.DetailNoSession)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return domain.NewValidationError(domain.OpUpload, domain.DetailSessionActive)
	}

	copied := *session
	s.active = &copied
	s.chat.Reset(copied.ID)

	logger.Info("Session %s active for %q", copied.ID, copied.FileName)
	return nil
}

// ClearSession deletes the active session on the server. On any failure
// the session stays active and the error channel explains why.
func (s *SessionService) ClearSession(ctx context.Context) error {
	session, err := s.beginClear()
	if err != nil {
		s.errors.Report(err)
		return err
	}
	defer s.finishClear()

	logger.Debug("Clearing session %s", session.ID)

	if err := s.clear(ctx, session.ID); err != nil {
		logger.Warn("Clearing session %s failed: %v", session.ID, err)
		s.errors.Report(err)
		return err
	}

	s.mu.Lock()
	if s.active != nil && s.active.ID == session.ID {
		s.active = nil
		s.chat.Discard()
	}
	s.mu.Unlock()

	s.status.Set(StatusSessionCleared)
	s.errors.Clear()

	logger.Info("Session %s cleared", session.ID)
	return nil
}

// Ask submits a question against the active session and waits for the reply.
// Local precondition failures are reported to the error channel; remote
// failures become bot turns.
func (s *SessionService) Ask(ctx context.Context, text string) ([]domain.Message, error) {
	session := s.Active()
	if session == nil {
		return nil, s.reportQuery(domain.NewValidationError(domain.OpQuery, domain.DetailNoSession))
	}
	msgs, err := s.chat.Submit(ctx, session, text)
	if err != nil {
		return nil, s.reportQuery(err)
	}
	s.errors.Clear()
	return msgs, nil
}

// Post appends a question against the active session without waiting.
func (s *SessionService) Post(text string) (*domain.Turn, error) {
	session := s.Active()
	if session == nil {
		return nil, s.reportQuery(domain.NewValidationError(domain.OpQuery, domain.DetailNoSession))
	}
	turn, err := s.chat.Post(session, text)
	if err != nil {
		return nil, s.reportQuery(err)
	}
	s.errors.Clear()
	return turn, nil
}

// Resolve completes a posted question and returns the bot reply.
// Refusing a turn that is no longer pending leaves the error channel
// alone; the turn was superseded, not mistyped.
func (s *SessionService) Resolve(ctx context.Context, turn *domain.Turn) (domain.Message, error) {
	return s.chat.Resolve(ctx, turn)
}

// reportQuery puts a rejected question on the error channel.
func (s *SessionService) reportQuery(err error) error {
	s.errors.Report(err)
	return err
}

// Transcript returns a copy of the active session's messages.
func (s *SessionService) Transcript() []domain.Message {
	return s.chat.Transcript()
}

// Errors exposes the error channel.
func (s *SessionService) Errors() *ErrorChannel {
	return s.errors
}

// Status exposes the success status channel.
func (s *SessionService) Status() *Channel {
	return s.status
}

// Snapshot captures all display state at once.
func (s *SessionService) Snapshot() domain.Snapshot {
	s.mu.Lock()
	session := s.activeCopy()
	upload := s.uploader.Pending()
	if s.uploading {
		upload = domain.PendingUploading
	}
	clearing := domain.PendingNone
	if s.clearing {
		clearing = domain.PendingClearing
	}
	s.mu.Unlock()

	return domain.Snapshot{
		Session:    session,
		Transcript: s.chat.Transcript(),
		Error:      s.errors.Current(),
		Status:     s.status.Current(),
		Upload:     upload,
		Query:      s.chat.Pending(),
		Clear:      clearing,
	}
}

// beginUpload holds the upload path until the new session is adopted.
func (s *SessionService) beginUpload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return domain.NewValidationError(domain.OpUpload, domain.DetailSessionActive)
	}
	if s.uploading {
		return domain.NewValidationError(domain.OpUpload, domain.DetailUploadPending)
	}
	s.uploading = true
	return nil
}

func (s *SessionService) finishUpload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading = false
}

func (s *SessionService) beginClear() (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil, domain.NewValidationError(domain.OpClear, domain.DetailNoSession)
	}
	if s.clearing {
		return nil, domain.NewValidationError(domain.OpClear, domain.DetailClearPending)
	}
	s.clearing = true
	return s.activeCopy(), nil
}

func (s *SessionService) finishClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearing = false
}

func (s *SessionService) clear(ctx context.Context, sessionID string) error {
	if s.client == nil {
		return domain.NewTransportError(domain.OpClear, ErrNoClient)
	}
	return s.client.ClearSession(context.WithoutCancel(ctx), sessionID)
}

// activeCopy returns a copy of the active session (caller must hold lock).
func (s *SessionService) activeCopy() *domain.Session {
	if s.active == nil {
		return nil
	}
	copied := *s.active
	return &copied
}
