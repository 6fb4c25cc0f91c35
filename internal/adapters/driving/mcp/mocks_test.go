package mcp

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// mockSession is a mock implementation of driving.SessionController.
type mockSession struct {
	active     *domain.Session
	transcript []domain.Message
	snapshot   domain.Snapshot
	reply      domain.Message
	err        error

	uploaded *domain.UploadFile
	asked    string
	cleared  bool
}

var _ driving.SessionController = (*mockSession)(nil)

func (m *mockSession) Active() *domain.Session {
	return m.active
}

func (m *mockSession) Mode() domain.Mode {
	if m.active.IsActive() {
		return domain.ModeChat
	}
	return domain.ModeUpload
}

func (m *mockSession) Upload(_ context.Context, file *domain.UploadFile) (*domain.Session, error) {
	m.uploaded = file
	if m.err != nil {
		return nil, m.err
	}
	m.active = &domain.Session{
		ID:       "abc123",
		FileName: file.Name,
		Status:   domain.SessionActive,
		Message:  "Indexed 10 pages",
	}
	return m.active, nil
}

func (m *mockSession) AdoptSession(session *domain.Session) error {
	m.active = session
	return m.err
}

func (m *mockSession) ClearSession(_ context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.cleared = true
	m.active = nil
	return nil
}

func (m *mockSession) Ask(_ context.Context, text string) ([]domain.Message, error) {
	m.asked = text
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Message{domain.UserMessage(text), m.reply}, nil
}

func (m *mockSession) Post(text string) (*domain.Turn, error) {
	return &domain.Turn{Query: text}, m.err
}

func (m *mockSession) Resolve(_ context.Context, _ *domain.Turn) (domain.Message, error) {
	return m.reply, m.err
}

func (m *mockSession) Transcript() []domain.Message {
	return m.transcript
}

func (m *mockSession) Snapshot() domain.Snapshot {
	snap := m.snapshot
	if snap.Session == nil {
		snap.Session = m.active
	}
	return snap
}
