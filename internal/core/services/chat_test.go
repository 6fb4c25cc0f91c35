package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

func activeSession(id string) *domain.Session {
	return &domain.Session{ID: id, FileName: "report.pdf", Status: domain.SessionActive}
}

func newChat(client *mockClient, sessionID string) *ChatService {
	chat := NewChatService(client, memory.NewTranscriptStore())
	chat.Reset(sessionID)
	return chat
}

func TestChatService_Submit_Success(t *testing.T) {
	client := &mockClient{
		AskFunc: func(_ context.Context, sessionID, query string) (*domain.Answer, error) {
			assert.Equal(t, "abc123", sessionID)
			assert.Equal(t, "What is the total?", query)
			return &domain.Answer{Text: "$500", Sources: []string{"p.3"}}, nil
		},
	}
	chat := newChat(client, "abc123")

	msgs, err := chat.Submit(context.Background(), activeSession("abc123"), "What is the total?")

	require.NoError(t, err)
	want := []domain.Message{
		{Sender: domain.SenderUser, Text: "What is the total?"},
		{Sender: domain.SenderBot, Text: "$500", Sources: []string{"p.3"}},
	}
	assert.Equal(t, want, msgs)
	assert.Equal(t, want, chat.Transcript())
	assert.Equal(t, domain.PendingNone, chat.Pending())
}

func TestChatService_Submit_EmptyQuery(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			client := &mockClient{}
			chat := newChat(client, "abc123")

			msgs, err := chat.Submit(context.Background(), activeSession("abc123"), text)

			assert.Nil(t, msgs)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, chat.Transcript())
			assert.Zero(t, client.asks.Load())
		})
	}
}

func TestChatService_Submit_NoSession(t *testing.T) {
	client := &mockClient{}
	chat := newChat(client, "abc123")

	_, err := chat.Submit(context.Background(), nil, "hello")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = chat.Submit(context.Background(), &domain.Session{ID: "abc123", Status: domain.SessionAbsent}, "hello")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Zero(t, client.asks.Load())
}

func TestChatService_Submit_SessionMismatch(t *testing.T) {
	client := &mockClient{}
	chat := newChat(client, "abc123")

	_, err := chat.Submit(context.Background(), activeSession("other"), "hello")

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.DetailSessionMismatch, domain.DisplayMessage(err))
	assert.Empty(t, chat.Transcript())
}

func TestChatService_Submit_RemoteFailuresBecomeBotTurns(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "service detail", err: domain.NewServiceError(domain.OpQuery, 410, "session expired"), want: "Error: session expired"},
		{name: "service fallback", err: domain.NewServiceError(domain.OpQuery, 500, ""), want: "Error: " + domain.FallbackQueryFailed},
		{name: "transport", err: domain.NewTransportError(domain.OpQuery, errors.New("reset")), want: domain.NetworkErrorQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{
				AskFunc: func(context.Context, string, string) (*domain.Answer, error) {
					return nil, tt.err
				},
			}
			chat := newChat(client, "abc123")

			msgs, err := chat.Submit(context.Background(), activeSession("abc123"), "q")

			require.NoError(t, err)
			require.Len(t, msgs, 2)
			transcript := chat.Transcript()
			require.Len(t, transcript, 2)
			assert.Equal(t, domain.Message{Sender: domain.SenderBot, Text: tt.want, Failed: true}, transcript[1])
			assert.Equal(t, domain.PendingNone, chat.Pending())
		})
	}
}

func TestChatService_Submit_NilClient(t *testing.T) {
	chat := NewChatService(nil, memory.NewTranscriptStore())
	chat.Reset("abc123")

	msgs, err := chat.Submit(context.Background(), activeSession("abc123"), "q")

	require.NoError(t, err)
	assert.Equal(t, domain.NetworkErrorQuery, msgs[1].Text)
	assert.True(t, msgs[1].Failed)
}

func TestChatService_Submit_MissingSourcesEmpty(t *testing.T) {
	client := &mockClient{
		AskFunc: func(context.Context, string, string) (*domain.Answer, error) {
			return &domain.Answer{Text: "yes"}, nil
		},
	}
	chat := newChat(client, "abc123")

	msgs, err := chat.Submit(context.Background(), activeSession("abc123"), "q")

	require.NoError(t, err)
	assert.NotNil(t, msgs[1].Sources)
	assert.Empty(t, msgs[1].Sources)
}

func TestChatService_TranscriptGrowsByTwoPerQuestion(t *testing.T) {
	client := &mockClient{}
	chat := newChat(client, "abc123")
	session := activeSession("abc123")

	const n = 5
	for i := 0; i < n; i++ {
		_, err := chat.Submit(context.Background(), session, fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	transcript := chat.Transcript()
	require.Len(t, transcript, 2*n)
	for i := 0; i < n; i++ {
		assert.Equal(t, domain.SenderUser, transcript[2*i].Sender)
		assert.Equal(t, fmt.Sprintf("question %d", i), transcript[2*i].Text)
		assert.Equal(t, domain.SenderBot, transcript[2*i+1].Sender)
	}
}

func TestChatService_PostWhilePendingRejected(t *testing.T) {
	g := newGate()
	client := &mockClient{
		AskFunc: func(context.Context, string, string) (*domain.Answer, error) {
			g.wait()
			return &domain.Answer{Text: "first"}, nil
		},
	}
	chat := newChat(client, "abc123")
	session := activeSession("abc123")

	turn, err := chat.Post(session, "first question")
	require.NoError(t, err)
	assert.Equal(t, 0, turn.Index)
	assert.Equal(t, domain.PendingQuerying, chat.Pending())

	var eg errgroup.Group
	eg.Go(func() error {
		_, err := chat.Resolve(context.Background(), turn)
		return err
	})
	g.Entered(t)

	_, err = chat.Post(session, "second question")
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.DetailQueryPending, domain.DisplayMessage(err))

	// Reading the transcript is not blocked by the outstanding call.
	assert.Len(t, chat.Transcript(), 1)

	g.Open()
	require.NoError(t, eg.Wait())
	assert.Len(t, chat.Transcript(), 2)
	assert.Equal(t, domain.PendingNone, chat.Pending())
}

func TestChatService_ConcurrentSubmitAllowsOne(t *testing.T) {
	g := newGate()
	client := &mockClient{
		AskFunc: func(context.Context, string, string) (*domain.Answer, error) {
			g.wait()
			return &domain.Answer{Text: "ok"}, nil
		},
	}
	chat := newChat(client, "abc123")
	session := activeSession("abc123")

	first, err := chat.Post(session, "q")
	require.NoError(t, err)

	var eg errgroup.Group
	rejected := make([]error, 8)
	for i := range rejected {
		eg.Go(func() error {
			_, rejected[i] = chat.Submit(context.Background(), session, "q")
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	for _, err := range rejected {
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	eg.Go(func() error {
		_, err := chat.Resolve(context.Background(), first)
		return err
	})
	g.Entered(t)
	g.Open()
	require.NoError(t, eg.Wait())

	assert.Len(t, chat.Transcript(), 2)
	assert.Equal(t, int32(1), client.asks.Load())
}

func TestChatService_LateReplyAfterResetDropped(t *testing.T) {
	g := newGate()
	client := &mockClient{
		AskFunc: func(context.Context, string, string) (*domain.Answer, error) {
			g.wait()
			return &domain.Answer{Text: "late"}, nil
		},
	}
	chat := newChat(client, "abc123")

	turn, err := chat.Post(activeSession("abc123"), "q")
	require.NoError(t, err)

	var eg errgroup.Group
	var reply domain.Message
	eg.Go(func() error {
		var err error
		reply, err = chat.Resolve(context.Background(), turn)
		return err
	})
	g.Entered(t)

	chat.Discard()
	assert.Equal(t, domain.PendingNone, chat.Pending())

	g.Open()
	require.NoError(t, eg.Wait())

	assert.Equal(t, "late", reply.Text)
	assert.Empty(t, chat.Transcript())
}

func TestChatService_ResolveTwiceAppendsOneReply(t *testing.T) {
	client := &mockClient{}
	chat := newChat(client, "abc123")

	turn, err := chat.Post(activeSession("abc123"), "q1")
	require.NoError(t, err)

	_, err = chat.Resolve(context.Background(), turn)
	require.NoError(t, err)

	_, err = chat.Resolve(context.Background(), turn)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.DetailTurnNotPending, domain.DisplayMessage(err))

	assert.Len(t, chat.Transcript(), 2)
	assert.Equal(t, int32(1), client.asks.Load())
}

func TestChatService_ResolveStaleTurnRefused(t *testing.T) {
	client := &mockClient{}
	chat := newChat(client, "abc123")
	session := activeSession("abc123")

	first, err := chat.Post(session, "q1")
	require.NoError(t, err)
	_, err = chat.Resolve(context.Background(), first)
	require.NoError(t, err)

	second, err := chat.Post(session, "q2")
	require.NoError(t, err)

	_, err = chat.Resolve(context.Background(), first)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.PendingQuerying, chat.Pending(), "refusal leaves the pending turn alone")

	_, err = chat.Resolve(context.Background(), second)
	require.NoError(t, err)

	var texts []string
	for _, msg := range chat.Transcript() {
		texts = append(texts, msg.Text)
	}
	assert.Equal(t, []string{"q1", "answer to q1", "q2", "answer to q2"}, texts)
	assert.Equal(t, int32(2), client.asks.Load())
}

func TestChatService_ResolveWhileClaimedRefused(t *testing.T) {
	g := newGate()
	client := &mockClient{
		AskFunc: func(context.Context, string, string) (*domain.Answer, error) {
			g.wait()
			return &domain.Answer{Text: "once"}, nil
		},
	}
	chat := newChat(client, "abc123")

	turn, err := chat.Post(activeSession("abc123"), "q")
	require.NoError(t, err)

	var eg errgroup.Group
	eg.Go(func() error {
		_, err := chat.Resolve(context.Background(), turn)
		return err
	})
	g.Entered(t)

	_, err = chat.Resolve(context.Background(), turn)
	assert.ErrorIs(t, err, domain.ErrValidation)

	g.Open()
	require.NoError(t, eg.Wait())
	assert.Len(t, chat.Transcript(), 2)
	assert.Equal(t, int32(1), client.asks.Load())
}

func TestChatService_ResolveNilTurn(t *testing.T) {
	client := &mockClient{}
	chat := newChat(client, "abc123")

	_, err := chat.Resolve(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, chat.Transcript())
	assert.Zero(t, client.asks.Load())
}

func TestChatService_DiscardLogsDroppedMessages(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	chat := newChat(&mockClient{}, "abc123")
	_, err := chat.Submit(context.Background(), activeSession("abc123"), "q")
	require.NoError(t, err)

	chat.Discard()

	assert.Contains(t, buf.String(), "Discarding 2 messages of session abc123")
	assert.Empty(t, chat.Transcript())
}
