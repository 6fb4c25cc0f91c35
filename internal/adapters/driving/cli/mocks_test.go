package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/services"
)

// mockClient implements driven.DocumentQAClient for command tests.
type mockClient struct {
	UploadFunc       func(ctx context.Context, file *domain.UploadFile) (*domain.UploadResult, error)
	AskFunc          func(ctx context.Context, sessionID, query string) (*domain.Answer, error)
	ClearSessionFunc func(ctx context.Context, sessionID string) error

	uploads atomic.Int32
	asks    atomic.Int32
	clears  atomic.Int32
}

var _ driven.DocumentQAClient = (*mockClient)(nil)

func (m *mockClient) Upload(ctx context.Context, file *domain.UploadFile) (*domain.UploadResult, error) {
	m.uploads.Add(1)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, file)
	}
	return &domain.UploadResult{SessionID: "abc123", Message: "Indexed 10 pages"}, nil
}

func (m *mockClient) Ask(ctx context.Context, sessionID, query string) (*domain.Answer, error) {
	m.asks.Add(1)
	if m.AskFunc != nil {
		return m.AskFunc(ctx, sessionID, query)
	}
	return &domain.Answer{Text: "answer to " + query, Sources: []string{"page 1"}}, nil
}

func (m *mockClient) ClearSession(ctx context.Context, sessionID string) error {
	m.clears.Add(1)
	if m.ClearSessionFunc != nil {
		return m.ClearSessionFunc(ctx, sessionID)
	}
	return nil
}

// testServices is what setupTestServices installed.
type testServices struct {
	client   *mockClient
	session  *services.SessionService
	settings *services.SettingsService
	config   *memory.ConfigStore
}

// setupTestServices installs services backed by client and an in-memory
// config, and resets global command state when the test ends.
func setupTestServices(t *testing.T, client *mockClient) *testServices {
	t.Helper()

	errCh := services.NewErrorChannel()
	session := services.NewSessionService(
		client,
		services.NewUploadService(client, errCh, 0),
		services.NewChatService(client, memory.NewTranscriptStore()),
		errCh,
	)
	config := memory.NewConfigStore(nil)
	settings := services.NewSettingsService(config)

	SetServices(&Services{Session: session, Settings: settings})
	t.Cleanup(resetCommandState)

	return &testServices{client: client, session: session, settings: settings, config: config}
}

func resetCommandState() {
	SetServices(nil)
	SetServiceFactory(nil)
	askJSON = false
	chatKeep = false
	tuiKeep = false
	serverURL = ""
	verbose = false
	configDir = ""
	rootCmd.SetIn(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetArgs(nil)
}

// execute runs the root command with args and stdin, capturing output.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeDocument(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o600))
	return path
}
