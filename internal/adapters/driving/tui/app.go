package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/views/threads"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	// chatView shows the active thread and the message input.
	chatView *chat.View

	// threadsView lists threads.
	threadsView *threads.View

	// searchView finds notes and opens them.
	searchView *search.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// showHelp overlays the full keybinding list.
	showHelp bool

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
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

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatView:    chat.NewView(s, km, ports.Chat, ports.Thread, ports.Upload, ports.File),
		threadsView: threads.NewView(s, km, ports.Thread),
		searchView:  search.NewView(s, km, ports.Search, ports.File),
		currentView: messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.threadsView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("notely"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		if keymap.Matches(keyStr, a.keymap.Quit) {
			return a, tea.Quit
		}
		if keymap.Matches(keyStr, a.keymap.Help) {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			if keymap.Matches(keyStr, a.keymap.Back) {
				a.showHelp = false
			}
			return a, nil
		}
		if keymap.Matches(keyStr, a.keymap.Search) && a.currentView != messages.ViewSearch {
			return a.Update(messages.ViewChanged{View: messages.ViewSearch})
		}

		switch a.currentView {
		case messages.ViewChat:
			a.chatView, cmd = a.chatView.Update(msg)
		case messages.ViewThreads:
			a.threadsView, cmd = a.threadsView.Update(msg)
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewThreads:
			return a, a.threadsView.Init()
		case messages.ViewChat:
			return a, a.chatView.Focus()
		case messages.ViewSearch:
			return a, tea.Batch(a.searchView.Focus(), a.searchView.Init())
		}
		return a, nil

	case messages.ThreadSelected:
		if msg.Err != nil {
			a.err = msg.Err
			a.threadsView, cmd = a.threadsView.Update(msg)
			return a, cmd
		}
		a.currentView = messages.ViewChat
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ThreadCreated:
		if msg.Err == nil {
			a.currentView = messages.ViewChat
		} else {
			a.err = msg.Err
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ThreadsLoaded, messages.ThreadDeleted:
		a.threadsView, cmd = a.threadsView.Update(msg)
		return a, cmd

	case messages.SearchCompleted, messages.FileContentLoaded:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewChat:
			a.chatView, cmd = a.chatView.Update(msg)
		case messages.ViewThreads:
			a.threadsView, cmd = a.threadsView.Update(msg)
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd
	}

	// The search field blinks too while it is showing.
	if a.currentView == messages.ViewSearch {
		var searchCmd tea.Cmd
		a.searchView, searchCmd = a.searchView.Update(msg)
		a.chatView, cmd = a.chatView.Update(msg)
		return a, tea.Batch(cmd, searchCmd)
	}

	// Pipeline events, spinner ticks and input blinks belong to the chat
	// view whichever view is showing, so streams keep draining.
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.showHelp {
		return a.viewHelp()
	}

	switch a.currentView {
	case messages.ViewThreads:
		return a.threadsView.View()
	case messages.ViewSearch:
		return a.searchView.View()
	default:
		return a.chatView.View()
	}
}

// viewHelp renders the full keybinding list.
func (a *App) viewHelp() string {
	sections := []string{a.styles.Title.Render("Help"), ""}
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			sections = append(sections, fmt.Sprintf("  %-12s %s", h.Key, h.Desc))
		}
		sections = append(sections, "")
	}
	sections = append(sections,
		a.styles.Muted.Render("  Type /upload <path>... in the chat input to add notes."),
		"",
		a.styles.Help.Render(strings.Join([]string{"[esc] close", "[ctrl+h] toggle"}, "  ")),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
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

// ShowingHelp reports whether the help overlay is visible.
func (a *App) ShowingHelp() bool {
	return a.showHelp
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and its views.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
	a.threadsView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
}
