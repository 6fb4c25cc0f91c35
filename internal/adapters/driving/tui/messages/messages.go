// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewUpload selects a document while no session is active.
	ViewUpload ViewType = iota
	// ViewChat asks questions about the active document.
	ViewChat
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewUpload:
		return "upload"
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// UploadCompleted carries the outcome of an upload.
type UploadCompleted struct {
	Session *domain.Session
	Err     error
}

// QuestionPosted signals a user turn was appended and awaits its reply.
type QuestionPosted struct {
	Turn *domain.Turn
}

// AnswerReceived carries the bot turn that resolved a posted question.
// Err is set when the turn was no longer pending.
type AnswerReceived struct {
	Turn  *domain.Turn
	Reply domain.Message
	Err   error
}

// SessionCleared carries the outcome of clearing the active session.
type SessionCleared struct {
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
