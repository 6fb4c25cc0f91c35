// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateUploading State = "uploading"
	StateQuerying  State = "querying"
	StateClearing  State = "clearing"
	StateError     State = "error"
	StateHelp      State = "help"
)

// StateOf derives the bar state from a session snapshot.
// An operation in flight wins over a stale error.
func StateOf(snap domain.Snapshot) State {
	switch {
	case snap.Upload == domain.PendingUploading:
		return StateUploading
	case snap.Clear == domain.PendingClearing:
		return StateClearing
	case snap.Query == domain.PendingQuerying:
		return StateQuerying
	case snap.Error != "":
		return StateError
	default:
		return StateReady
	}
}

// Bar displays application status and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	message  string
	document string
	hints    []key.Binding
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Sync and the Set methods
	return s, nil
}

// Sync copies state, message and document name from a snapshot.
func (s *Bar) Sync(snap domain.Snapshot) {
	s.state = StateOf(snap)
	s.message = snap.Status
	if s.state == StateError {
		s.message = snap.Error
	}
	s.document = ""
	if snap.Session != nil {
		s.document = snap.Session.FileName
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the document and state.
func (s *Bar) renderLeft() string {
	var parts []string
	if s.document != "" {
		parts = append(parts, s.styles.Normal.Render(s.document))
	}
	parts = append(parts, s.renderState())
	return strings.Join(parts, s.styles.Muted.Render(" | "))
}

func (s *Bar) renderState() string {
	switch s.state {
	case StateUploading:
		return s.styles.Muted.Render("Uploading...")
	case StateQuerying:
		return s.styles.Muted.Render("Thinking...")
	case StateClearing:
		return s.styles.Muted.Render("Clearing...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(s.message)
		}
		return s.styles.Error.Render("Error")
	case StateHelp:
		return s.styles.Normal.Render("Help")
	case StateReady:
		if s.message != "" {
			return s.styles.Success.Render(s.message)
		}
	}
	return s.styles.Muted.Render("Ready")
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	bindings := s.hints
	if len(bindings) == 0 {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// Document returns the name of the active document, if any.
func (s *Bar) Document() string {
	return s.document
}

// SetHints replaces the keybinding hints shown on the right.
func (s *Bar) SetHints(bindings []key.Binding) {
	s.hints = bindings
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.document = ""
}
