// Package input provides text input components for the TUI.
package input

import (
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// counterThreshold is the length from which the character counter shows.
const counterThreshold = domain.MaxMessageLength - 500

// ChatInput wraps a bubbles textinput for composing messages.
type ChatInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewChatInput creates a new chat input component.
func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your notes, or /upload <path>..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = domain.MaxMessageLength
	ti.Width = 60

	return &ChatInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init initialises the chat input.
func (c *ChatInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the input, with a character counter near the limit.
func (c *ChatInput) View() string {
	field := c.styles.InputField.Width(c.width - 2).Render(c.textinput.View())
	n := utf8.RuneCountInString(c.textinput.Value())
	if n < counterThreshold {
		return field
	}
	counter := c.styles.Warning.Render(fmt.Sprintf("%d/%d", n, domain.MaxMessageLength))
	return lipgloss.JoinVertical(lipgloss.Right, field, counter)
}

// Value returns the current input value.
func (c *ChatInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *ChatInput) SetValue(value string) {
	c.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (c *ChatInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *ChatInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *ChatInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	// Account for border, padding and prompt
	inputWidth := width - 8
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *ChatInput) Width() int {
	return c.width
}

// Reset clears the input.
func (c *ChatInput) Reset() {
	c.textinput.Reset()
}
