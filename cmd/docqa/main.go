// Command docqa uploads a document to a question-answering service and
// lets you chat with it from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/docqa"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa-cli/internal/core/services"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version string

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.base_url": "DOCQA_SERVER_URL",
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		_ = logger.Close()
	}()

	cli.SetVersion(version)
	cli.SetServiceFactory(buildServices)

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// loadDotEnv reads path into the environment. A missing file is not an error
// and variables already set win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// buildServices wires the service graph from settings and global flags.
func buildServices(opts cli.Options) (*cli.Services, error) {
	store, err := file.NewConfigStore(opts.ConfigDir, file.WithEnv(envBindings))
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(store)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if opts.ServerURL != "" {
		settings.Server.BaseURL = opts.ServerURL
	}

	logger.SetVerbose(opts.Verbose || settings.Log.Verbose)
	if err := logger.SetFile(settings.Log.File); err != nil {
		logger.Warn("File logging disabled: %v", err)
	}

	out := &cli.Services{Settings: settingsService}

	client, err := docqa.NewClient(docqa.Config{BaseURL: settings.Server.BaseURL})
	if err != nil {
		out.SessionErr = fmt.Errorf("%w; run 'docqa settings set-server <url>' or pass --server", err)
		return out, nil
	}
	logger.Debug("Using service at %s", client.BaseURL())

	errCh := services.NewErrorChannel()
	out.Session = services.NewSessionService(
		client,
		services.NewUploadService(client, errCh, settings.Upload.MaxBytes()),
		services.NewChatService(client, memory.NewTranscriptStore()),
		errCh,
	)
	return out, nil
}
