package domain

import (
	"errors"
	"fmt"
)

// Operation names the remote operation an error belongs to.
type Operation string

// Remote operations.
const (
	OpUpload Operation = "upload"
	OpQuery  Operation = "query"
	OpClear  Operation = "clear"
)

// ErrorKind classifies failures by whether the service responded,
// and whether a remote call was attempted at all.
type ErrorKind int

// Error kinds.
const (
	// KindValidation is a local precondition failure; nothing was sent.
	KindValidation ErrorKind = iota + 1

	// KindService means the service responded with a non-success status.
	KindService

	// KindTransport means no usable response was obtained.
	KindTransport
)

// String returns the string representation.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindService:
		return "service"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// ErrInvalidInput indicates malformed or invalid settings input.
var ErrInvalidInput = errors.New("invalid input")

// Sentinels for matching by kind with errors.Is.
var (
	// ErrValidation matches any KindValidation error.
	ErrValidation = &Error{Kind: KindValidation}

	// ErrService matches any KindService error.
	ErrService = &Error{Kind: KindService}

	// ErrTransport matches any KindTransport error.
	ErrTransport = &Error{Kind: KindTransport}
)

// Fallback texts used when the service gives no detail.
const (
	FallbackUploadFailed = "File upload failed."
	FallbackQueryFailed  = "Failed to get an answer."
	FallbackClearFailed  = "Failed to clear session."
)

// Network error texts, distinct from anything the service reports.
const (
	NetworkErrorUpload = "Network error during file upload. Please try again."
	NetworkErrorQuery  = "Network error. Please try again."
	NetworkErrorClear  = "Network error while clearing session."
)

// Validation details.
const (
	DetailNoFile          = "no file selected"
	DetailEmptyQuery      = "query is empty"
	DetailNoSession       = "no active session"
	DetailSessionActive   = "a session is already active; clear it first"
	DetailUploadPending   = "an upload is already in progress"
	DetailQueryPending    = "a question is already being answered"
	DetailClearPending    = "the session is already being cleared"
	DetailSessionMismatch = "session does not own the transcript"
	DetailTurnNotPending  = "question is not awaiting an answer"
)

// Error is the single error shape every component boundary reports.
type Error struct {
	Kind ErrorKind
	Op   Operation

	// Status is the HTTP status for KindService errors.
	Status int

	// Detail is the user-displayable reason.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s error", e.Op, e.Kind)
	if e.Op == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Detail == "" && t.Status == 0 && t.Kind == e.Kind
}

// NewValidationError reports a local precondition failure.
func NewValidationError(op Operation, detail string) *Error {
	return &Error{Kind: KindValidation, Op: op, Detail: detail}
}

// NewServiceError reports a non-success response. An empty detail is
// replaced by the operation's fallback text.
func NewServiceError(op Operation, status int, detail string) *Error {
	if detail == "" {
		detail = fallbackDetail(op)
	}
	return &Error{Kind: KindService, Op: op, Status: status, Detail: detail}
}

// NewTransportError reports that no usable response was obtained.
func NewTransportError(op Operation, cause error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: cause}
}

// KindOf returns the kind of err, or 0 when err is not a domain error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// DisplayMessage returns the text shown to the user for err.
// Query service errors are prefixed with "Error: " since they appear
// as bot turns in the transcript.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case KindTransport:
		return networkMessage(e.Op)
	case KindService:
		if e.Op == OpQuery {
			return "Error: " + e.Detail
		}
		return e.Detail
	default:
		return e.Detail
	}
}

func fallbackDetail(op Operation) string {
	switch op {
	case OpUpload:
		return FallbackUploadFailed
	case OpQuery:
		return FallbackQueryFailed
	case OpClear:
		return FallbackClearFailed
	default:
		return "Request failed."
	}
}

func networkMessage(op Operation) string {
	switch op {
	case OpUpload:
		return NetworkErrorUpload
	case OpClear:
		return NetworkErrorClear
	default:
		return NetworkErrorQuery
	}
}
