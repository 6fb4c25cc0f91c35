// Package upload provides the document selection view for the TUI.
package upload

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/localfs"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// View asks for a document path and uploads it.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	field   *input.Field
	spinner spinner.Model

	session driving.SessionController
	ctx     context.Context

	width     int
	height    int
	ready     bool
	uploading string
	err       error
}

// NewView creates a new upload view.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.SessionController) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:  s,
		keymap:  km,
		field:   input.NewField(s, "File", "path/to/document.pdf"),
		spinner: sp,
		session: session,
		ctx:     context.Background(),
	}
}

// WithContext sets the context used for uploads.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.field.Init()
}

// Update handles messages for the upload view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if v.uploading == "" {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.UploadCompleted:
		v.uploading = ""
		if msg.Err == nil {
			v.field.Reset()
			v.err = nil
		}
		return v, nil

	case messages.ErrorOccurred:
		v.uploading = ""
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if keymap.Matches(msg.String(), v.keymap.Upload) {
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.field, cmd = v.field.Update(msg)
	return v, cmd
}

// submit starts an upload of the entered path unless one is running.
func (v *View) submit() tea.Cmd {
	if v.uploading != "" || v.session == nil {
		return nil
	}
	path := strings.TrimSpace(v.field.Value())
	v.err = nil
	v.uploading = path
	if v.uploading == "" {
		v.uploading = "document"
	}
	return tea.Batch(v.spinner.Tick, v.upload(path))
}

// upload opens path and hands it to the session controller.
// An empty path uploads no file so the controller reports the selection error.
func (v *View) upload(path string) tea.Cmd {
	ctx, session := v.ctx, v.session
	return func() tea.Msg {
		var file *domain.UploadFile
		if path != "" {
			doc, err := localfs.Open(path)
			if err != nil {
				return messages.ErrorOccurred{Err: err}
			}
			defer doc.Close()
			file = doc.UploadFile()
		}

		active, err := session.Upload(ctx, file)
		return messages.UploadCompleted{Session: active, Err: err}
	}
}

// View renders the upload view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Upload a document"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("PDF or text files. One document can be active at a time."))
	b.WriteString("\n\n")
	b.WriteString(v.field.View())
	b.WriteString("\n\n")

	switch {
	case v.uploading != "":
		b.WriteString(v.spinner.View() + " " + v.styles.Normal.Render("Uploading "+v.uploading+"..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(v.err.Error()))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// SetDimensions sets the available width and height.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.field.SetWidth(width - 4)
}

// Width returns the view width.
func (v *View) Width() int {
	return v.width
}

// Height returns the view height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether dimensions have been set.
func (v *View) Ready() bool {
	return v.ready
}

// Path returns the entered path.
func (v *View) Path() string {
	return v.field.Value()
}

// SetPath replaces the entered path.
func (v *View) SetPath(path string) {
	v.field.SetValue(path)
}

// Uploading reports whether an upload started here is running.
func (v *View) Uploading() bool {
	return v.uploading != ""
}

// Err returns the last local error, such as an unreadable path.
func (v *View) Err() error {
	return v.err
}

// Reset clears the path, error and focus state.
func (v *View) Reset() tea.Cmd {
	v.field.Reset()
	v.err = nil
	v.uploading = ""
	return v.field.Focus()
}
