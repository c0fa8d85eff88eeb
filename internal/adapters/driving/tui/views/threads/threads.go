// Package threads provides the thread list view for the TUI.
package threads

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// ErrNoThreadService indicates that no thread service was provided.
var ErrNoThreadService = errors.New("thread service is required")

// View lists the user's threads.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.ThreadList
	statusbar *status.Bar

	threads driving.ThreadService
	ctx     context.Context

	loading bool
	width   int
	height  int
	ready   bool
	err     error
}

// NewView creates a new threads view.
func NewView(s *styles.Styles, km *keymap.KeyMap, threads driving.ThreadService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.ThreadsHelp())

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewThreadList(s),
		statusbar: bar,
		threads:   threads,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the thread list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadThreads()
}

// Update handles messages for the threads view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ThreadsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.list.SetThreads(msg.Threads)
		v.markActive()
		v.statusbar.SetMessage("")
		return v, nil

	case messages.ThreadDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.statusbar.SetMessage("Deleted thread")
		return v, v.loadThreads()

	case messages.ThreadSelected:
		if msg.Err != nil {
			v.err = msg.Err
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	case keymap.Matches(keyStr, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(keyStr, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(keyStr, v.keymap.Select):
		if thread := v.list.SelectedThread(); thread != nil {
			return v, v.selectThread(thread.ID)
		}
	case keymap.Matches(keyStr, v.keymap.Delete):
		if thread := v.list.SelectedThread(); thread != nil {
			return v, v.deleteThread(thread.ID)
		}
	case keymap.Matches(keyStr, v.keymap.Refresh):
		v.loading = true
		return v, v.loadThreads()
	case keymap.Matches(keyStr, v.keymap.NewThread):
		return v, v.createThread()
	}

	return v, nil
}

func (v *View) loadThreads() tea.Cmd {
	return func() tea.Msg {
		if v.threads == nil {
			return messages.ThreadsLoaded{Err: ErrNoThreadService}
		}
		threads, err := v.threads.List(v.ctx)
		return messages.ThreadsLoaded{Threads: threads, Err: err}
	}
}

func (v *View) selectThread(id string) tea.Cmd {
	return func() tea.Msg {
		if v.threads == nil {
			return messages.ThreadSelected{Err: ErrNoThreadService}
		}
		thread, err := v.threads.Select(v.ctx, id)
		return messages.ThreadSelected{Thread: thread, Err: err}
	}
}

func (v *View) deleteThread(id string) tea.Cmd {
	return func() tea.Msg {
		if v.threads == nil {
			return messages.ThreadDeleted{ID: id, Err: ErrNoThreadService}
		}
		return messages.ThreadDeleted{ID: id, Err: v.threads.Delete(v.ctx, id)}
	}
}

func (v *View) createThread() tea.Cmd {
	return func() tea.Msg {
		if v.threads == nil {
			return messages.ThreadCreated{Err: ErrNoThreadService}
		}
		thread, err := v.threads.Create(v.ctx, "")
		return messages.ThreadCreated{Thread: thread, Err: err}
	}
}

func (v *View) markActive() {
	if v.threads == nil {
		return
	}
	if active, ok := v.threads.Active(); ok {
		v.list.SetActive(active.ID)
	} else {
		v.list.SetActive("")
	}
}

// View renders the threads view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 6)
	sections = append(sections, v.styles.Title.Render("Notely | Threads"), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.loading && v.list.IsEmpty() {
		sections = append(sections, v.styles.Muted.Render("Loading threads..."))
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.list.SetDimensions(width, height-5)
	v.statusbar.SetWidth(width)
}

// List returns the thread list component.
func (v *View) List() *list.ThreadList {
	return v.list
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
