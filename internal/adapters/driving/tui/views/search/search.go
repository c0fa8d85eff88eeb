// Package search provides the note search view for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// Mode is what the search view is showing.
type Mode int

const (
	// ModeQuery is typing a query.
	ModeQuery Mode = iota
	// ModeResults is navigating the hits.
	ModeResults
	// ModeNote is reading an opened note.
	ModeNote
)

// chromeHeight is the rows taken by the header, input and status bar.
const chromeHeight = 7

// View searches notes and opens a hit in a scrollable reader.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	reader    viewport.Model
	statusbar *status.Bar

	search driving.SearchService
	files  driving.FileService
	ctx    context.Context

	mode      Mode
	searching bool
	noteTitle string
	width     int
	height    int
	ready     bool
	err       error
}

// NewView creates a new search view. files may be nil, in which case hits
// cannot be opened.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	search driving.SearchService,
	files driving.FileService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.SearchHelp())

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewSearchInput(s),
		list:      list.NewResultList(s),
		reader:    viewport.New(80, 24-chromeHeight),
		statusbar: bar,
		search:    search,
		files:     files,
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

// Init starts the input cursor blinking.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Focus returns to query mode with the previous query kept.
func (v *View) Focus() tea.Cmd {
	v.mode = ModeQuery
	return v.input.Focus()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.FileContentLoaded:
		v.handleContentLoaded(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	if keymap.Matches(keyStr, v.keymap.Back) {
		if v.mode == ModeNote {
			v.mode = ModeResults
			v.statusbar.SetMessage("")
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	}

	switch v.mode {
	case ModeQuery:
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd

	case ModeResults:
		switch {
		case keymap.Matches(keyStr, v.keymap.Select):
			return v, v.openSelected()
		case keymap.Matches(keyStr, v.keymap.Up), keymap.Matches(keyStr, v.keymap.Down):
			v.list, _ = v.list.Update(msg)
		case keyStr == "n" || keyStr == "/":
			v.input.SetValue("")
			return v, v.Focus()
		}
		return v, nil

	case ModeNote:
		var cmd tea.Cmd
		v.reader, cmd = v.reader.Update(msg)
		return v, cmd
	}

	return v, nil
}

// submit runs the typed query.
func (v *View) submit() tea.Cmd {
	query := strings.TrimSpace(v.input.Value())
	if query == "" || v.searching {
		return nil
	}
	v.searching = true
	v.err = nil
	v.statusbar.SetMessage("Searching...")
	return v.performSearch(query)
}

func (v *View) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if v.search == nil {
			return messages.SearchCompleted{Query: query, Err: ErrNoSearchService}
		}
		results, err := v.search.Search(v.ctx, query, 0)
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	v.searching = false
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetMessage("")
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	if len(msg.Results) == 0 {
		v.statusbar.SetMessage(fmt.Sprintf("No notes match %q", msg.Query))
		return
	}
	v.statusbar.SetMessage(fmt.Sprintf("%d results", len(msg.Results)))
	v.mode = ModeResults
	v.input.Blur()
}

// openSelected loads the extracted text of the highlighted hit.
func (v *View) openSelected() tea.Cmd {
	result := v.list.SelectedResult()
	if result == nil {
		return nil
	}
	id, title := result.ID, result.Title
	v.statusbar.SetMessage("Opening " + title + "...")
	return func() tea.Msg {
		if v.files == nil {
			return messages.FileContentLoaded{ID: id, Title: title, Err: ErrNoFileService}
		}
		content, err := v.files.Content(v.ctx, id)
		return messages.FileContentLoaded{ID: id, Title: title, Content: content, Err: err}
	}
}

func (v *View) handleContentLoaded(msg messages.FileContentLoaded) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetMessage("")
		return
	}

	v.err = nil
	v.noteTitle = msg.Title
	if v.noteTitle == "" {
		v.noteTitle = "(Untitled)"
	}
	body := lipgloss.NewStyle().Width(max(v.width-2, 20))
	v.reader.SetContent(body.Render(msg.Content))
	v.reader.GotoTop()
	v.statusbar.SetMessage("")
	v.mode = ModeNote
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	if v.mode == ModeNote {
		sections = append(sections, v.styles.Title.Render("Notely | "+v.noteTitle), "", v.reader.View())
	} else {
		sections = append(sections, v.styles.Title.Render("Notely | Search"), "", v.input.View(), "")
		if v.err != nil {
			sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
		}
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

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-chromeHeight)
	v.reader.Width = width
	v.reader.Height = max(height-4, 1)
	v.statusbar.SetWidth(width)
}

// Mode returns what the view is showing.
func (v *View) Mode() Mode {
	return v.mode
}

// Query returns the typed query.
func (v *View) Query() string {
	return v.input.Value()
}

// List returns the result list component.
func (v *View) List() *list.ResultList {
	return v.list
}

// Note returns the text of the opened note as rendered.
func (v *View) Note() string {
	return v.reader.View()
}

// StatusBar returns the status bar component.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}

// Searching reports whether a query is in flight.
func (v *View) Searching() bool {
	return v.searching
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
