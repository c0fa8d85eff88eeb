// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// ThreadList displays chat threads in a navigable list.
type ThreadList struct {
	threads  []domain.ChatThread
	activeID string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewThreadList creates a new thread list component.
func NewThreadList(s *styles.Styles) *ThreadList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ThreadList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the thread list.
func (l *ThreadList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *ThreadList) Update(msg tea.Msg) (*ThreadList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the thread list.
func (l *ThreadList) View() string {
	if len(l.threads) == 0 {
		return l.styles.Muted.Render("No threads yet")
	}

	lines := make([]string, 0, len(l.threads)+2)
	lines = append(lines, l.styles.Title.Render(fmt.Sprintf("Threads (%d)", len(l.threads))), "")

	// One line per thread, leaving room for the header.
	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.threads))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderThread(i, &l.threads[i]))
	}

	return strings.Join(lines, "\n")
}

// renderThread formats a single thread row.
func (l *ThreadList) renderThread(index int, thread *domain.ChatThread) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}
	active := " "
	if thread.ID == l.activeID {
		active = "*"
	}

	title := thread.Title
	if title == "" {
		title = domain.DefaultThreadTitle
	}
	maxTitleLen := max(l.width-24, 10)
	runes := []rune(title)
	if len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen-3]) + "..."
	}

	updated := ""
	if !thread.LastUpdated.IsZero() {
		updated = thread.LastUpdated.Local().Format("Jan 02 15:04")
	}

	row := fmt.Sprintf("%s%s %-*s  ", indicator, active, maxTitleLen, title)
	if index == l.selected {
		return l.styles.Selected.Render(row + updated)
	}
	return l.styles.Normal.Render(row) + l.styles.Muted.Render(updated)
}

// SetThreads updates the list, keeping the selection in range.
func (l *ThreadList) SetThreads(threads []domain.ChatThread) {
	l.threads = threads
	if l.selected >= len(threads) {
		l.selected = max(len(threads)-1, 0)
	}
}

// Threads returns the current threads.
func (l *ThreadList) Threads() []domain.ChatThread {
	return l.threads
}

// SetActive marks the active thread.
func (l *ThreadList) SetActive(id string) {
	l.activeID = id
}

// Selected returns the index of the selected thread.
func (l *ThreadList) Selected() int {
	return l.selected
}

// SelectedThread returns the currently selected thread, or nil if none.
func (l *ThreadList) SelectedThread() *domain.ChatThread {
	if len(l.threads) == 0 || l.selected < 0 || l.selected >= len(l.threads) {
		return nil
	}
	return &l.threads[l.selected]
}

// MoveUp moves selection up.
func (l *ThreadList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *ThreadList) MoveDown() {
	if l.selected < len(l.threads)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *ThreadList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of threads.
func (l *ThreadList) Count() int {
	return len(l.threads)
}

// IsEmpty returns whether the list is empty.
func (l *ThreadList) IsEmpty() bool {
	return len(l.threads) == 0
}
