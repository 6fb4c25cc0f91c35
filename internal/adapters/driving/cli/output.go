package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/localfs"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// displayError prints as the user-facing text of the wrapped error.
type displayError struct {
	err error
}

func (e *displayError) Error() string {
	return domain.DisplayMessage(e.err)
}

func (e *displayError) Unwrap() error {
	return e.err
}

// printMessage writes one transcript entry with its sources.
func printMessage(w io.Writer, msg domain.Message) {
	fmt.Fprintf(w, "%s: %s\n", msg.Sender.Label(), msg.Text)
	if len(msg.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, "  Sources:")
	for _, src := range msg.Sources {
		fmt.Fprintf(w, "    - %s\n", strings.TrimSpace(src))
	}
}

// uploadPath opens path and uploads it as the new active session.
func uploadPath(ctx context.Context, cmd *cobra.Command, session driving.SessionController, path string, quiet bool) (*domain.Session, error) {
	doc, err := localfs.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	file := doc.UploadFile()
	if !quiet {
		cmd.Printf("Uploading %s...\n", file.Name)
	}

	active, err := session.Upload(ctx, file)
	if err != nil {
		return nil, &displayError{err: err}
	}

	if !quiet {
		if msg := session.Snapshot().Status; msg != "" {
			cmd.Println(msg)
		}
	}
	return active, nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
