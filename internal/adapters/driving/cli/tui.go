package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

var tuiKeep bool

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [file]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Without a file the TUI starts on the upload screen; with one it uploads
the file first and opens the chat.

Controls:
  Enter    - Upload / Ask
  Ctrl+X   - Clear the document
  PgUp/Dn  - Scroll the transcript
  F1       - Toggle help
  Ctrl+C   - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiKeep, "keep", false, "leave the session on the server when exiting")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	session, err := requireSession()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if len(args) == 1 {
		if _, err := uploadPath(ctx, cmd, session, args[0], true); err != nil {
			return err
		}
	}

	app, err := tui.NewApp(tui.NewPorts(session))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	// Console logs would corrupt the alternate screen.
	logger.SetOutput(io.Discard)
	runErr := app.Run()
	logger.SetOutput(cmd.ErrOrStderr())

	if !tuiKeep && session.Mode() == domain.ModeChat {
		if err := session.ClearSession(ctx); err != nil {
			logger.Warn("Leaving session active: %v", err)
			cmd.PrintErrf("Could not clear the session: %s\n", domain.DisplayMessage(err))
		}
	}

	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}
