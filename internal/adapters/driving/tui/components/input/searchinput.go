package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/styles"
)

// SearchInput wraps a bubbles textinput for search queries.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewSearchInput creates a new search input component.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Search your notes..."
	ti.Prompt = "/ "
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	return &SearchInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init initialises the search input.
func (c *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the input.
func (c *SearchInput) View() string {
	return c.styles.InputField.Width(c.width - 2).Render(c.textinput.View())
}

// Value returns the current query.
func (c *SearchInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the query.
func (c *SearchInput) SetValue(value string) {
	c.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (c *SearchInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *SearchInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *SearchInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *SearchInput) SetWidth(width int) {
	c.width = width
	c.textinput.Width = max(width-8, 20)
}
