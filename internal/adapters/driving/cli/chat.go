package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// maxLineBytes bounds a single line of REPL input.
const maxLineBytes = 1 << 20

const chatHelp = `Commands:
  /upload <file>  Upload a document (only when none is active)
  /clear          Clear the active document on the server
  /status         Show the active document
  /help           Show this help
  /quit           Leave (clears the document unless --keep)

Anything else is sent as a question about the active document.`

var chatKeep bool

var chatCmd = &cobra.Command{
	Use:   "chat <file>",
	Short: "Upload a document and chat with it",
	Long: `Uploads the document and starts a line-based chat session.

Each line you type is sent as a question; the answer is printed with
its sources. Type /help for commands.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatKeep, "keep", false, "leave the session on the server when exiting")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	session, err := requireSession()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	active, err := uploadPath(ctx, cmd, session, args[0], false)
	if err != nil {
		return err
	}
	logger.Section("Chat " + active.FileName)

	repl := &chatREPL{
		cmd:     cmd,
		session: session,
		in:      cmd.InOrStdin(),
		prompt:  isTerminal(cmd.InOrStdin()),
	}
	return repl.run(ctx)
}

// chatREPL reads questions and commands line by line.
type chatREPL struct {
	cmd     *cobra.Command
	session driving.SessionController
	in      io.Reader
	prompt  bool
}

func (r *chatREPL) run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	r.cmd.Println("Ask a question about the document. Type /help for commands.")
	for {
		if r.prompt {
			r.cmd.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		if done := r.handle(ctx, strings.TrimSpace(scanner.Text())); done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	r.exit(ctx)
	return nil
}

// handle processes one line and reports whether the REPL should stop.
func (r *chatREPL) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		r.ask(ctx, line)
		return false
	}

	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		r.cmd.Println(chatHelp)
	case "/clear":
		r.clear(ctx)
	case "/status":
		r.status()
	case "/upload":
		r.upload(ctx, strings.TrimSpace(arg))
	default:
		r.cmd.PrintErrf("Unknown command %s. Type /help for commands.\n", name)
	}
	return false
}

func (r *chatREPL) ask(ctx context.Context, question string) {
	if r.session.Mode() != domain.ModeChat {
		r.cmd.PrintErrln("No document is active. Use /upload <file> first.")
		return
	}

	msgs, err := r.session.Ask(ctx, question)
	if err != nil {
		r.cmd.PrintErrln(domain.DisplayMessage(err))
		return
	}
	printMessage(r.cmd.OutOrStdout(), msgs[len(msgs)-1])
}

func (r *chatREPL) clear(ctx context.Context) {
	if err := r.session.ClearSession(ctx); err != nil {
		r.cmd.PrintErrln(domain.DisplayMessage(err))
		return
	}
	r.cmd.Println(r.session.Snapshot().Status)
}

func (r *chatREPL) upload(ctx context.Context, path string) {
	if path == "" {
		r.cmd.PrintErrln("Usage: /upload <file>")
		return
	}
	if _, err := uploadPath(ctx, r.cmd, r.session, path, false); err != nil {
		r.cmd.PrintErrln(err.Error())
	}
}

func (r *chatREPL) status() {
	snap := r.session.Snapshot()
	if snap.Session == nil {
		r.cmd.Println("No document is active.")
		return
	}
	r.cmd.Printf("Document: %s\n", snap.Session.FileName)
	r.cmd.Printf("Session:  %s\n", snap.Session.ID)
	r.cmd.Printf("Messages: %d\n", len(snap.Transcript))
}

// exit clears the active session unless --keep was given.
func (r *chatREPL) exit(ctx context.Context) {
	if chatKeep || r.session.Mode() != domain.ModeChat {
		return
	}
	if err := r.session.ClearSession(ctx); err != nil {
		logger.Warn("Leaving session active: %v", err)
		r.cmd.PrintErrf("Could not clear the session: %s\n", domain.DisplayMessage(err))
	}
}
