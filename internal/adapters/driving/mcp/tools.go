package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/localfs"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// UploadInput is the input schema for the upload_document tool.
type UploadInput struct {
	Path string `json:"path" jsonschema:"path to a PDF or text file on this machine"`
}

// UploadOutput is the output schema for the upload_document tool.
type UploadOutput struct {
	SessionID string `json:"session_id"`
	FileName  string `json:"file_name"`
	Message   string `json:"message,omitempty"`
}

// AskInput is the input schema for the ask_question tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to ask about the active document"`
}

// AskOutput is the output schema for the ask_question tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Failed  bool     `json:"failed,omitempty"`
}

// ClearInput is the empty input schema for the clear_session tool.
type ClearInput struct{}

// ClearOutput is the output schema for the clear_session tool.
type ClearOutput struct {
	Status string `json:"status"`
}

// StatusInput is the empty input schema for the session_status tool.
type StatusInput struct{}

// StatusOutput describes the active document and pending work.
type StatusOutput struct {
	Active    bool   `json:"active"`
	SessionID string `json:"session_id,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	Messages  int    `json:"messages"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	Uploading bool   `json:"uploading"`
	Querying  bool   `json:"querying"`
	Clearing  bool   `json:"clearing"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Upload a PDF or text document so questions can be asked about it. Fails while another document is active.",
	}, s.handleUpload)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Ask a question about the active document and get an answer with its sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_session",
		Description: "Delete the active document on the server so another can be uploaded",
	}, s.handleClear)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "session_status",
		Description: "Report the active document, transcript length and any operation in progress",
	}, s.handleStatus)
}

// handleUpload handles the upload_document tool invocation.
func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	doc, err := localfs.Open(input.Path)
	if err != nil {
		return nil, UploadOutput{}, err
	}
	defer doc.Close()

	session, err := s.ports.Session.Upload(ctx, doc.UploadFile())
	if err != nil {
		return nil, UploadOutput{}, &toolError{err: err}
	}

	return nil, UploadOutput{
		SessionID: session.ID,
		FileName:  session.FileName,
		Message:   session.Message,
	}, nil
}

// handleAsk handles the ask_question tool invocation.
// A failed answer is still a bot turn, so it is returned as output.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	msgs, err := s.ports.Session.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, &toolError{err: err}
	}

	reply := msgs[len(msgs)-1]
	output := AskOutput{
		Answer:  reply.Text,
		Sources: reply.Sources,
		Failed:  reply.Failed,
	}
	if output.Sources == nil {
		output.Sources = []string{}
	}

	var result *mcp.CallToolResult
	if reply.Failed {
		result = &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: reply.Text}},
		}
	}
	return result, output, nil
}

// handleClear handles the clear_session tool invocation.
func (s *Server) handleClear(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ClearInput,
) (*mcp.CallToolResult, ClearOutput, error) {
	if err := s.ports.Session.ClearSession(ctx); err != nil {
		return nil, ClearOutput{}, &toolError{err: err}
	}
	return nil, ClearOutput{Status: s.ports.Session.Snapshot().Status}, nil
}

// handleStatus handles the session_status tool invocation.
func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return nil, statusOf(s.ports.Session.Snapshot()), nil
}

func statusOf(snap domain.Snapshot) StatusOutput {
	out := StatusOutput{
		Active:    snap.Mode() == domain.ModeChat,
		Messages:  len(snap.Transcript),
		Status:    snap.Status,
		Error:     snap.Error,
		Uploading: snap.Upload == domain.PendingUploading,
		Querying:  snap.Query == domain.PendingQuerying,
		Clearing:  snap.Clear == domain.PendingClearing,
	}
	if snap.Session != nil {
		out.SessionID = snap.Session.ID
		out.FileName = snap.Session.FileName
	}
	return out
}
