package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui/views/upload"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// headerHeight and footerHeight frame the active view.
const (
	headerHeight = 2
	footerHeight = 1
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
//
// The active view follows the session: upload while no document is
// active, chat while one is.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	uploadView *upload.View
	chatView   *chat.View
	statusBar  *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// helpReturn is the view restored when help closes.
	helpReturn messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		uploadView: upload.NewView(s, km, ports.Session),
		chatView:   chat.NewView(s, km, ports.Session),
		statusBar:  status.NewBar(s, km),
	}
	a.currentView = viewFor(ports.Session.Mode())
	a.sync()
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.uploadView.WithContext(ctx)
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	viewInit := a.uploadView.Init()
	if a.currentView == messages.ViewChat {
		viewInit = a.chatView.Init()
	}
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("docqa"),
		viewInit,
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	return a, tea.Batch(cmd, a.sync())
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case spinner.TickMsg:
		// Each spinner ignores ticks addressed to the other.
		var uploadCmd, chatCmd tea.Cmd
		a.uploadView, uploadCmd = a.uploadView.Update(msg)
		a.chatView, chatCmd = a.chatView.Update(msg)
		return tea.Batch(uploadCmd, chatCmd)

	case messages.UploadCompleted:
		a.err = msg.Err
		a.uploadView, cmd = a.uploadView.Update(msg)
		return cmd

	case messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		return cmd

	case messages.SessionCleared:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return cmd

	case messages.ViewChanged:
		if msg.View == messages.ViewHelp {
			a.openHelp()
		}
		return nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewUpload:
			a.uploadView, cmd = a.uploadView.Update(msg)
		case messages.ViewChat:
			a.chatView, cmd = a.chatView.Update(msg)
		case messages.ViewHelp:
			// Help does not show errors
		}
		return cmd

	case messages.Quit:
		return tea.Quit
	}

	return a.forward(msg)
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	keyStr := msg.String()

	if keymap.Matches(keyStr, a.keymap.Quit) {
		return tea.Quit
	}

	if a.currentView == messages.ViewHelp {
		if keymap.Matches(keyStr, a.keymap.Back) || keymap.Matches(keyStr, a.keymap.Help) {
			a.currentView = a.helpReturn
		}
		return nil
	}

	if keymap.Matches(keyStr, a.keymap.Help) {
		a.openHelp()
		return nil
	}

	return a.forward(msg)
}

// forward hands msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewUpload:
		a.uploadView, cmd = a.uploadView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHelp:
		// Help is static
	}
	return cmd
}

func (a *App) openHelp() {
	if a.currentView == messages.ViewHelp {
		return
	}
	a.helpReturn = a.currentView
	a.currentView = messages.ViewHelp
}

// sync refreshes the status bar from the session and switches views
// when a document became active or was cleared.
func (a *App) sync() tea.Cmd {
	snap := a.ports.Session.Snapshot()
	a.statusBar.Sync(snap)

	want := viewFor(snap.Mode())
	current := a.currentView
	if current == messages.ViewHelp {
		current = a.helpReturn
	}

	var cmd tea.Cmd
	if want != current {
		switch want {
		case messages.ViewChat:
			cmd = a.chatView.Reset()
		case messages.ViewUpload, messages.ViewHelp:
			cmd = a.uploadView.Reset()
		}
		if a.currentView == messages.ViewHelp {
			a.helpReturn = want
		} else {
			a.currentView = want
		}
	}

	switch a.currentView {
	case messages.ViewChat:
		a.statusBar.SetHints(a.keymap.ChatHelp())
	case messages.ViewUpload:
		a.statusBar.SetHints(a.keymap.UploadHelp())
	case messages.ViewHelp:
		a.statusBar.SetHints([]key.Binding{a.keymap.Back, a.keymap.Quit})
	}
	return cmd
}

func viewFor(mode domain.Mode) messages.ViewType {
	if mode == domain.ModeChat {
		return messages.ViewChat
	}
	return messages.ViewUpload
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewChat:
		body = a.chatView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.uploadView.View()
	}

	bodyHeight := max(a.height-headerHeight-footerHeight, 1)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, a.viewHeader(), body, a.statusBar.View())
}

func (a *App) viewHeader() string {
	title := a.styles.Title.Render("docqa")
	sub := a.styles.Muted.Render("Ask questions about a document")
	if session := a.ports.Session.Active(); session != nil {
		sub = a.styles.Subtitle.Render(session.FileName)
	}
	return title + "  " + sub + "\n"
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Muted.Render("Upload a PDF or text file, then ask questions about it.\n" +
		"Clear the document to upload another."))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// StatusBar returns the status bar, for inspection.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// UploadView returns the upload view.
func (a *App) UploadView() *upload.View {
	return a.uploadView
}

// ChatView returns the chat view.
func (a *App) ChatView() *chat.View {
	return a.chatView
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	bodyHeight := max(height-headerHeight-footerHeight, 1)
	a.uploadView.SetDimensions(width, bodyHeight)
	a.chatView.SetDimensions(width, bodyHeight)
	a.statusBar.SetWidth(width)
}
