// Package docqa provides the HTTP adapter for the document question-answering service.
package docqa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.DocumentQAClient = (*Client)(nil)

// API paths relative to the base URL.
const (
	uploadPath  = "/api/v1/document/upload"
	askPath     = "/api/v1/chat/ask"
	sessionPath = "/api/v1/document/session/"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a failure body is read for its detail.
const maxErrorBody = 1 << 20

// Adapter errors.
var (
	// ErrInvalidBaseURL indicates the configured base URL is unusable.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrMissingSession indicates an upload succeeded without a session id.
	ErrMissingSession = errors.New("upload response has no session_id")

	// ErrMalformedResponse indicates a success body that is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed response body")
)

// Config holds configuration for the service client.
type Config struct {
	// BaseURL is the scheme and host of the service, e.g. http://localhost:8000.
	BaseURL string

	// HTTPClient overrides the default client. The default has no timeout.
	HTTPClient *http.Client
}

// Client talks to the document QA service over HTTP.
// Each call is a single attempt with no retry.
type Client struct {
	client    *http.Client
	baseURL   string
	requestID func() string
}

// uploadResponse is the success body of the upload endpoint.
type uploadResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// askRequest is the body of the ask endpoint.
type askRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// askResponse is the success body of the ask endpoint.
type askResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		client:    httpClient,
		baseURL:   base,
		requestID: uuid.NewString,
	}, nil
}

// BaseURL returns the normalised service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends the file as the multipart field "file".
// A missing file or file content is refused before anything is sent.
func (c *Client) Upload(ctx context.Context, file *domain.UploadFile) (*domain.UploadResult, error) {
	body, contentType, err := encodeUpload(file)
	if errors.Is(err, errNoContent) {
		return nil, domain.NewValidationError(domain.OpUpload, domain.DetailNoFile)
	}
	if err != nil {
		return nil, domain.NewTransportError(domain.OpUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		_ = body.Close()
		return nil, domain.NewTransportError(domain.OpUpload, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)

	var out uploadResponse
	if err := c.do(req, domain.OpUpload, &out); err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, domain.NewTransportError(domain.OpUpload, ErrMissingSession)
	}

	return &domain.UploadResult{SessionID: out.SessionID, Message: out.Message}, nil
}

// Ask sends a question scoped to sessionID.
func (c *Client) Ask(ctx context.Context, sessionID, query string) (*domain.Answer, error) {
	payload, err := json.Marshal(askRequest{SessionID: sessionID, Query: query})
	if err != nil {
		return nil, domain.NewTransportError(domain.OpQuery, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+askPath, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewTransportError(domain.OpQuery, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	var out askResponse
	if err := c.do(req, domain.OpQuery, &out); err != nil {
		return nil, err
	}

	sources := out.Sources
	if sources == nil {
		sources = []string{}
	}
	return &domain.Answer{Text: out.Answer, Sources: sources}, nil
}

// ClearSession deletes the server-side state of sessionID.
// Any success body is ignored.
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	endpoint := c.baseURL + sessionPath + url.PathEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return domain.NewTransportError(domain.OpClear, fmt.Errorf("create request: %w", err))
	}
	return c.do(req, domain.OpClear, nil)
}

// do sends req and decodes a success body into out when out is non-nil.
func (c *Client) do(req *http.Request, op domain.Operation, out any) error {
	id := c.requestID()
	req.Header.Set(RequestIDHeader, id)
	req.Header.Set("Accept", "application/json")

	logger.Debug("%s %s (%s %s)", req.Method, req.URL.Path, RequestIDHeader, id)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NewTransportError(op, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	logger.Debug("%s %s -> %d (%s %s)", req.Method, req.URL.Path, resp.StatusCode, RequestIDHeader, id)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.NewServiceError(op, resp.StatusCode, parseDetail(data))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewTransportError(op, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	return nil
}
