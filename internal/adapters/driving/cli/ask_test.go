package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

func TestAskCmd_PrintsAnswerAndClears(t *testing.T) {
	stack := setupTestServices(t, &mockClient{})

	out, errOut, err := execute(t, "", "ask", writeDocument(t, "report.pdf"), "What", "is", "the", "total?")

	require.NoError(t, err)
	assert.Empty(t, errOut)
	assert.Equal(t, "Bot: answer to What is the total?\n  Sources:\n    - page 1\n", out)
	assert.Equal(t, int32(1), stack.client.clears.Load())
	assert.Equal(t, domain.ModeUpload, stack.session.Mode())
}

func TestAskCmd_JSON(t *testing.T) {
	setupTestServices(t, &mockClient{})

	out, _, err := execute(t, "", "ask", "--json", writeDocument(t, "report.pdf"), "What is the total?")

	require.NoError(t, err)
	var got askResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, askResult{
		File:      "report.pdf",
		SessionID: "abc123",
		Question:  "What is the total?",
		Answer:    "answer to What is the total?",
		Sources:   []string{"page 1"},
	}, got)
}

func TestAskCmd_JSON_EmptySources(t *testing.T) {
	setupTestServices(t, &mockClient{
		AskFunc: func(context.Context, string, string) (*domain.Answer, error) {
			return &domain.Answer{Text: "no idea"}, nil
		},
	})

	out, _, err := execute(t, "", "ask", "--json", writeDocument(t, "report.pdf"), "why?")

	require.NoError(t, err)
	assert.Contains(t, out, `"sources": []`)
}

func TestAskCmd_FailedAnswer(t *testing.T) {
	stack := setupTestServices(t, &mockClient{
		AskFunc: func(context.Context, string, string) (*domain.Answer, error) {
			return nil, domain.NewServiceError(domain.OpQuery, http.StatusNotFound, "Session not found")
		},
	})

	out, _, err := execute(t, "", "ask", writeDocument(t, "report.pdf"), "why?")

	require.Error(t, err)
	assert.Equal(t, "Error: Session not found", err.Error())
	assert.Empty(t, out)
	assert.Equal(t, int32(1), stack.client.clears.Load())
}

func TestAskCmd_FailedAnswer_JSON(t *testing.T) {
	setupTestServices(t, &mockClient{
		AskFunc: func(context.Context, string, string) (*domain.Answer, error) {
			return nil, domain.NewTransportError(domain.OpQuery, errors.New("connection refused"))
		},
	})

	out, _, err := execute(t, "", "ask", "--json", writeDocument(t, "report.pdf"), "why?")

	require.Error(t, err)
	var got askResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Failed)
	assert.Equal(t, domain.NetworkErrorQuery, got.Answer)
}

func TestAskCmd_BlankQuestion(t *testing.T) {
	stack := setupTestServices(t, &mockClient{})

	_, _, err := execute(t, "", "ask", writeDocument(t, "report.pdf"), "  ")

	require.Error(t, err)
	assert.Equal(t, domain.DetailEmptyQuery, err.Error())
	assert.Equal(t, int32(0), stack.client.uploads.Load())
}

func TestAskCmd_ClearFailureWarns(t *testing.T) {
	setupTestServices(t, &mockClient{
		ClearSessionFunc: func(context.Context, string) error {
			return domain.NewServiceError(domain.OpClear, http.StatusInternalServerError, "")
		},
	})

	_, errOut, err := execute(t, "", "ask", writeDocument(t, "report.pdf"), "why?")

	require.NoError(t, err)
	assert.Contains(t, errOut, "Could not clear the session: "+domain.FallbackClearFailed)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	setupTestServices(t, &mockClient{})

	_, _, err := execute(t, "", "ask", writeDocument(t, "report.pdf"))

	assert.Error(t, err)
}
