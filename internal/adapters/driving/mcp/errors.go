// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants upload a document and ask questions about it.
package mcp

import (
	"errors"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("mcp: session service is required")

// toolError carries the user-facing text of a failed operation to the client.
type toolError struct {
	err error
}

func (e *toolError) Error() string {
	return domain.DisplayMessage(e.err)
}

func (e *toolError) Unwrap() error {
	return e.err
}
