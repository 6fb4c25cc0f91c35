package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docqa resources.
	uriScheme = "docqa://"

	transcriptURI = uriScheme + "transcript"
	sessionURI    = uriScheme + "session"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         transcriptURI,
		Name:        "transcript",
		Description: "Questions and answers for the active document, oldest first",
		MIMEType:    "application/json",
	}, s.handleTranscriptResource)

	s.server.AddResource(&mcp.Resource{
		URI:         sessionURI,
		Name:        "session",
		Description: "The active document session and any operation in progress",
		MIMEType:    "application/json",
	}, s.handleSessionResource)
}

// handleTranscriptResource returns the transcript of the active document.
func (s *Server) handleTranscriptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	msgs := s.ports.Session.Transcript()
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return jsonResource(req.Params.URI, msgs, "transcript")
}

// handleSessionResource returns the session status.
func (s *Server) handleSessionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, statusOf(s.ports.Session.Snapshot()), "session")
}

func jsonResource(uri string, v any, what string) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", what, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
