// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// inputHeight is the bordered question field plus its spacing line.
const inputHeight = 4

// View shows the transcript of the active document and accepts questions.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	field    *input.Field
	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	session driving.SessionController
	ctx     context.Context

	width    int
	height   int
	ready    bool
	pending  *domain.Turn
	clearing bool
	err      error
}

// NewView creates a new chat view.
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

	v := &View{
		styles:   s,
		keymap:   km,
		field:    input.NewField(s, "Ask", "What is this document about?"),
		spinner:  sp,
		viewport: viewport.New(80, 20),
		session:  session,
		ctx:      context.Background(),
	}
	v.renderer = newRenderer(80)
	return v
}

// newRenderer builds a markdown renderer wrapping at width.
func newRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logger.Warn("Markdown rendering disabled: %v", err)
		return nil
	}
	return r
}

// WithContext sets the context used for remote calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	v.refresh()
	return tea.Batch(v.field.Init(), v.field.Focus())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if v.pending == nil && !v.clearing {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd

	case messages.AnswerReceived:
		if v.pending == nil || v.pending != msg.Turn {
			return v, nil
		}
		v.pending = nil
		v.err = msg.Err
		v.refresh()
		return v, nil

	case messages.SessionCleared:
		v.clearing = false
		v.err = msg.Err
		if msg.Err == nil {
			v.pending = nil
		}
		v.refresh()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Ask):
		return v, v.ask()

	case keymap.Matches(keyStr, v.keymap.Clear):
		return v, v.clear()

	case keymap.Matches(keyStr, v.keymap.ScrollUp),
		keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.field, cmd = v.field.Update(msg)
	return v, cmd
}

// ask posts the entered question and resolves it in the background.
// Blank input is ignored.
func (v *View) ask() tea.Cmd {
	text := v.field.Value()
	if strings.TrimSpace(text) == "" || v.session == nil {
		return nil
	}

	turn, err := v.session.Post(text)
	if err != nil {
		v.err = err
		return nil
	}

	v.err = nil
	v.pending = turn
	v.field.Reset()
	v.refresh()

	ctx, session := v.ctx, v.session
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		reply, err := session.Resolve(ctx, turn)
		return messages.AnswerReceived{Turn: turn, Reply: reply, Err: err}
	})
}

// clear deletes the active session unless a clear is already in flight.
// An outstanding question does not block it; its late reply is dropped.
func (v *View) clear() tea.Cmd {
	if v.clearing || v.session == nil {
		return nil
	}
	v.clearing = true
	v.err = nil

	ctx, session := v.ctx, v.session
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		return messages.SessionCleared{Err: session.ClearSession(ctx)}
	})
}

// refresh re-renders the transcript into the viewport.
func (v *View) refresh() {
	if v.session == nil {
		return
	}
	v.viewport.SetContent(v.renderTranscript(v.session.Transcript()))
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript(msgs []domain.Message) string {
	var b strings.Builder

	if len(msgs) == 0 {
		b.WriteString(v.styles.Muted.Render("No questions yet."))
		b.WriteString("\n")
	}

	for _, msg := range msgs {
		if msg.Sender == domain.SenderUser {
			b.WriteString(v.styles.UserLabel.Render(msg.Sender.Label() + ":"))
			b.WriteString(" ")
			b.WriteString(v.styles.Normal.Render(msg.Text))
			b.WriteString("\n\n")
			continue
		}

		b.WriteString(v.styles.BotLabel.Render(msg.Sender.Label() + ":"))
		b.WriteString("\n")
		if msg.Failed {
			b.WriteString(v.styles.FailedTurn.Render(msg.Text))
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(v.renderMarkdown(msg.Text))
		if len(msg.Sources) > 0 {
			b.WriteString(v.styles.Muted.Render("Sources:"))
			b.WriteString("\n")
			for _, src := range msg.Sources {
				b.WriteString(v.styles.Source.Render("- " + strings.TrimSpace(src)))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	switch {
	case v.clearing:
		b.WriteString(v.spinner.View() + " " + v.styles.Muted.Render("Clearing session..."))
	case v.pending != nil:
		b.WriteString(v.spinner.View() + " " + v.styles.Muted.Render("Thinking..."))
	}

	return b.String()
}

// renderMarkdown renders answer text, falling back to plain text.
func (v *View) renderMarkdown(text string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Markdown rendering failed: %v", r)
			out = text + "\n"
		}
	}()

	if v.renderer != nil && text != "" {
		rendered, err := v.renderer.Render(text)
		if err == nil {
			return rendered
		}
	}
	return text + "\n"
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.viewport.View())
	b.WriteString("\n")
	if v.err != nil {
		b.WriteString(v.styles.Error.Render(domain.DisplayMessage(v.err)))
		b.WriteString("\n")
	}
	b.WriteString(v.field.View())
	return b.String()
}

// SetDimensions sets the available width and height.
func (v *View) SetDimensions(width, height int) {
	resized := width != v.width
	v.width = width
	v.height = height
	v.ready = true

	v.viewport.Width = width
	v.viewport.Height = max(height-inputHeight, 3)
	v.field.SetWidth(width)
	if resized {
		v.renderer = newRenderer(width - 4)
	}
	v.refresh()
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

// Question returns the text being typed.
func (v *View) Question() string {
	return v.field.Value()
}

// SetQuestion replaces the text being typed.
func (v *View) SetQuestion(text string) {
	v.field.SetValue(text)
}

// Pending returns the question awaiting its reply, or nil.
func (v *View) Pending() *domain.Turn {
	return v.pending
}

// Clearing reports whether a clear started here is running.
func (v *View) Clearing() bool {
	return v.clearing
}

// Err returns the last error shown under the transcript.
func (v *View) Err() error {
	return v.err
}

// Content returns the rendered transcript.
func (v *View) Content() string {
	return v.renderTranscript(v.transcript())
}

func (v *View) transcript() []domain.Message {
	if v.session == nil {
		return nil
	}
	return v.session.Transcript()
}

// Reset drops per-session state when a new document becomes active.
func (v *View) Reset() tea.Cmd {
	v.field.Reset()
	v.pending = nil
	v.clearing = false
	v.err = nil
	v.refresh()
	return v.field.Focus()
}
