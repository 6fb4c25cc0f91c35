package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <file> <question>...",
	Short: "Ask a single question about a document",
	Long: `Uploads the document, asks one question, prints the answer and clears
the session again.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askResult is the JSON shape of the ask command.
type askResult struct {
	File      string   `json:"file"`
	SessionID string   `json:"session_id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	Failed    bool     `json:"failed"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	session, err := requireSession()
	if err != nil {
		return err
	}

	question := strings.Join(args[1:], " ")
	if strings.TrimSpace(question) == "" {
		return &displayError{err: domain.NewValidationError(domain.OpQuery, domain.DetailEmptyQuery)}
	}

	ctx := cmd.Context()
	active, err := uploadPath(ctx, cmd, session, args[0], true)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.ClearSession(ctx); err != nil {
			logger.Warn("Clearing session %s failed: %v", active.ID, err)
			cmd.PrintErrf("Could not clear the session: %s\n", domain.DisplayMessage(err))
		}
	}()

	msgs, err := session.Ask(ctx, question)
	if err != nil {
		return &displayError{err: err}
	}
	reply := msgs[len(msgs)-1]

	if askJSON {
		sources := reply.Sources
		if sources == nil {
			sources = []string{}
		}
		data, err := json.MarshalIndent(askResult{
			File:      active.FileName,
			SessionID: active.ID,
			Question:  question,
			Answer:    reply.Text,
			Sources:   sources,
			Failed:    reply.Failed,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
	} else if !reply.Failed {
		printMessage(cmd.OutOrStdout(), reply)
	}

	if reply.Failed {
		return errors.New(reply.Text)
	}
	return nil
}
