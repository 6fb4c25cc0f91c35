package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService owns the transcript of the active session.
//
// A question is handled in two phases. Post appends the user turn and
// marks the query pending; it never fails once preconditions hold.
// Resolve issues the remote call and appends exactly one bot turn,
// whatever the outcome. Remote failures become bot turns and never
// reach the error channel.
type ChatService struct {
	client     driven.DocumentQAClient
	transcript driven.TranscriptStore

	mu         sync.Mutex
	generation uint64
	inflight   *domain.Turn
	claimed    *domain.Turn
}

// NewChatService creates a new chat service.
func NewChatService(client driven.DocumentQAClient, transcript driven.TranscriptStore) *ChatService {
	return &ChatService{
		client:     client,
		transcript: transcript,
	}
}

// Submit posts text and resolves it, returning the appended messages.
// Only local precondition failures are returned as errors.
func (s *ChatService) Submit(ctx context.Context, session *domain.Session, text string) ([]domain.Message, error) {
	turn, err := s.Post(session, text)
	if err != nil {
		return nil, err
	}
	reply, err := s.Resolve(ctx, turn)
	if err != nil {
		return nil, err
	}
	return []domain.Message{domain.UserMessage(turn.Query), reply}, nil
}

// Post appends the user turn and marks a query as pending.
func (s *ChatService) Post(session *domain.Session, text string) (*domain.Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError(domain.OpQuery, domain.DetailEmptyQuery)
	}
	if !session.IsActive() {
		return nil, domain.NewValidationError(domain.OpQuery, domain.DetailNoSession)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transcript.SessionID() != session.ID {
		return nil, domain.NewValidationError(domain.OpQuery, domain.DetailSessionMismatch)
	}
	if s.inflight != nil {
		return nil, domain.NewValidationError(domain.OpQuery, domain.DetailQueryPending)
	}

	index := s.transcript.Append(domain.UserMessage(text))
	turn := &domain.Turn{
		SessionID:  session.ID,
		Query:      text,
		Index:      index,
		Generation: s.generation,
	}
	s.inflight = turn
	return turn, nil
}

// Resolve issues the posted question and appends the bot reply.
// Only the turn currently pending can be resolved, and only once; any
// other turn is refused before a remote call is made. Once claimed, the
// pending flag is released on every path.
func (s *ChatService) Resolve(ctx context.Context, turn *domain.Turn) (domain.Message, error) {
	if err := s.claim(turn); err != nil {
		return domain.Message{}, err
	}

	logger.Debug("Asking session %s: %q", turn.SessionID, turn.Query)

	var reply domain.Message
	answer, err := s.ask(ctx, turn)
	if err != nil {
		logger.Warn("Question on session %s failed: %v", turn.SessionID, err)
		reply = domain.FailedAnswerMessage(err)
	} else {
		logger.Debug("Answer on session %s cites %d sources", turn.SessionID, len(answer.Sources))
		reply = domain.AnswerMessage(answer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claimed == turn {
		s.claimed = nil
	}
	if s.inflight == turn {
		s.inflight = nil
	}
	if turn.Generation != s.generation {
		logger.Debug("Dropping reply for session %s: transcript was replaced", turn.SessionID)
		return reply, nil
	}
	s.transcript.Append(reply)
	return reply, nil
}

// claim marks turn as being resolved. It must be the pending turn and
// not already claimed.
func (s *ChatService) claim(turn *domain.Turn) error {
	if turn == nil {
		return domain.NewValidationError(domain.OpQuery, domain.DetailTurnNotPending)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight != turn || s.claimed == turn {
		return domain.NewValidationError(domain.OpQuery, domain.DetailTurnNotPending)
	}
	s.claimed = turn
	return nil
}

// Transcript returns a copy of the messages in submission order.
func (s *ChatService) Transcript() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

// Pending reports whether a query is outstanding.
func (s *ChatService) Pending() domain.PendingOperation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight != nil {
		return domain.PendingQuerying
	}
	return domain.PendingNone
}

// Reset starts an empty transcript scoped to sessionID.
// A reply still in flight for the previous transcript is dropped.
func (s *ChatService) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.inflight = nil
	s.transcript.Reset(sessionID)
}

// Discard drops the transcript when its session is destroyed.
func (s *ChatService) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger.Debug("Discarding %d messages of session %s", s.transcript.Len(), s.transcript.SessionID())
	s.generation++
	s.inflight = nil
	s.transcript.Discard()
}

func (s *ChatService) ask(ctx context.Context, turn *domain.Turn) (*domain.Answer, error) {
	if s.client == nil {
		return nil, domain.NewTransportError(domain.OpQuery, ErrNoClient)
	}
	return s.client.Ask(context.WithoutCancel(ctx), turn.SessionID, turn.Query)
}
