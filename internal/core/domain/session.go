package domain

import (
	"io"
	"time"
)

// SessionStatus is the existence discriminant of a Session.
type SessionStatus string

// Session statuses.
const (
	// SessionAbsent means no document is bound to the client.
	SessionAbsent SessionStatus = "absent"

	// SessionActive means a document is uploaded and can be queried.
	SessionActive SessionStatus = "active"
)

// String returns the string representation.
func (s SessionStatus) String() string {
	return string(s)
}

// Session is one uploaded document bound to a server-side processing context.
type Session struct {
	// ID is the opaque identifier issued by the server.
	ID string `json:"id"`

	// FileName is the display name of the uploaded file.
	FileName string `json:"file_name"`

	// Status is SessionActive for an adopted session.
	Status SessionStatus `json:"status"`

	// Message is the human-readable status the server returned on upload.
	Message string `json:"message,omitempty"`

	// CreatedAt is when the client adopted the session.
	CreatedAt time.Time `json:"created_at"`
}

// IsActive reports whether the session can scope queries and clears.
func (s *Session) IsActive() bool {
	return s != nil && s.Status == SessionActive && s.ID != ""
}

// Mode identifies which operations are reachable for the current session state.
type Mode string

// Available modes.
const (
	// ModeUpload is reachable only while no session is active.
	ModeUpload Mode = "upload"

	// ModeChat is reachable only while a session is active.
	ModeChat Mode = "chat"
)

// PendingOperation marks the operation a coordinator currently has in flight.
type PendingOperation string

// Pending operations.
const (
	PendingNone      PendingOperation = "none"
	PendingUploading PendingOperation = "uploading"
	PendingQuerying  PendingOperation = "querying"
	PendingClearing  PendingOperation = "clearing"
)

// String returns the string representation.
func (p PendingOperation) String() string {
	return string(p)
}

// UploadFile is a document selected for upload.
// A nil *UploadFile means no file has been selected.
type UploadFile struct {
	// Name is the file name sent with the multipart part.
	Name string

	// Size is the content length in bytes, or 0 when unknown.
	Size int64

	// Content streams the file bytes.
	Content io.Reader
}

// UploadResult is the server's answer to a successful upload.
type UploadResult struct {
	SessionID string
	Message   string
}

// Answer is the server's answer to a successful question.
type Answer struct {
	Text    string
	Sources []string
}

// Snapshot captures session, transcript and display state together
// so presentation layers render a consistent view.
type Snapshot struct {
	Session    *Session
	Transcript []Message
	Error      string
	Status     string
	Upload     PendingOperation
	Query      PendingOperation
	Clear      PendingOperation
}

// Mode returns which operations the snapshot allows.
func (s Snapshot) Mode() Mode {
	if s.Session.IsActive() {
		return ModeChat
	}
	return ModeUpload
}
