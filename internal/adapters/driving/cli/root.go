// Package cli provides the cobra command tree for docqa.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services configured by the composition root or by tests.
var (
	sessionService  driving.SessionController
	settingsService driving.SettingsService
	sessionErr      error
)

// Global flag values.
var (
	serverURL string
	verbose   bool
	configDir string
)

// Options carries the global flag values to the service factory.
type Options struct {
	// ServerURL overrides the configured base URL when non-empty.
	ServerURL string

	// ConfigDir overrides the default ~/.docqa directory when non-empty.
	ConfigDir string

	// Verbose enables debug logging.
	Verbose bool
}

// Services is what the factory hands back to the command tree.
type Services struct {
	Session  driving.SessionController
	Settings driving.SettingsService

	// SessionErr explains why Session is nil, e.g. an unusable server URL.
	// Commands that do not talk to the service still run.
	SessionErr error
}

// ServiceFactory builds services once global flags are parsed.
type ServiceFactory func(opts Options) (*Services, error)

var factory ServiceFactory

// errNoSessionService is returned when no session service was configured.
var errNoSessionService = errors.New("document service not configured")

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about a document",
	Long: `docqa uploads a PDF or text document to a document question-answering
service and lets you chat with it.

One document is active at a time. Clear it to upload another.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "service base URL (overrides config and DOCQA_SERVER_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.docqa)")
}

// SetServiceFactory registers the function that builds services.
func SetServiceFactory(f ServiceFactory) {
	factory = f
}

// SetServices installs already-built services and skips the factory.
func SetServices(s *Services) {
	if s == nil {
		sessionService, settingsService, sessionErr = nil, nil, nil
		return
	}
	sessionService = s.Session
	settingsService = s.Settings
	sessionErr = s.SessionErr
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func initServices(cmd *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
	}
	if sessionService != nil || settingsService != nil || factory == nil {
		return nil
	}

	services, err := factory(Options{
		ServerURL: serverURL,
		ConfigDir: configDir,
		Verbose:   verbose,
	})
	if err != nil {
		return err
	}
	SetServices(services)
	logger.Debug("Services initialised for %s", cmd.CommandPath())
	return nil
}

// requireSession returns the session service or explains why it is missing.
func requireSession() (driving.SessionController, error) {
	if sessionService != nil {
		return sessionService, nil
	}
	if sessionErr != nil {
		return nil, sessionErr
	}
	return nil, errNoSessionService
}
