// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// Bar displays the chat phase, upload progress and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	bindings []key.Binding
	spinner  spinner.Model
	progress progress.Model

	chat      domain.ChatStatus
	upload    domain.UploadProgress
	fileCount int
	message   string
	width     int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	pr := progress.New(progress.WithSolidFill(string(s.Theme().Primary)), progress.WithoutPercentage())
	pr.Width = 20

	return &Bar{
		styles:    s,
		bindings:  km.ChatHelp(),
		spinner:   sp,
		progress:  pr,
		upload:    domain.IdleUploadProgress(),
		fileCount: -1,
		width:     80,
	}
}

// Init starts the spinner.
func (b *Bar) Init() tea.Cmd {
	return b.spinner.Tick
}

// Update advances the spinner.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(tick)
		return b, cmd
	}
	return b, nil
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders upload progress, the chat phase or a message.
func (b *Bar) renderLeft() string {
	if b.upload.Status != domain.UploadIdle {
		return b.renderUpload()
	}

	switch b.chat.Phase {
	case domain.PhaseSearching:
		return fmt.Sprintf("%s Searching your notes %s",
			b.spinner.View(), b.progress.ViewAs(b.chat.Progress/100))
	case domain.PhaseAnalyzing:
		return b.spinner.View() + " Analyzing sources..."
	case domain.PhaseGenerating:
		return b.spinner.View() + " Generating answer..."
	case domain.PhaseErrored:
		if b.chat.Err != nil {
			return b.styles.Error.Render("Error: " + b.chat.Err.Error())
		}
		return b.styles.Error.Render("Error")
	}

	if b.message != "" {
		return b.styles.Normal.Render(b.message)
	}
	if b.fileCount >= 0 {
		return b.styles.Muted.Render(fmt.Sprintf("%d notes", b.fileCount))
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) renderUpload() string {
	p := b.upload
	label := "Uploading"
	if p.Status == domain.UploadProcessing {
		label = "Processing"
	}
	done := float64(p.CurrentFileIndex)
	if p.Status == domain.UploadComplete || p.Status == domain.UploadError {
		done++
	}
	ratio := 0.0
	if p.TotalFiles > 0 {
		ratio = done / float64(p.TotalFiles)
	}
	return fmt.Sprintf("%s %s %s (%d/%d) %s",
		b.spinner.View(), label, p.CurrentFile, p.CurrentFileIndex+1, p.TotalFiles, b.progress.ViewAs(ratio))
}

// renderRight renders keybinding hints.
func (b *Bar) renderRight() string {
	hints := make([]string, 0, len(b.bindings))
	for _, binding := range b.bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Help.Render(strings.Join(hints, " | "))
}

// SetChatStatus records the chat pipeline state.
func (b *Bar) SetChatStatus(s domain.ChatStatus) {
	b.chat = s
}

// ChatStatus returns the recorded chat state.
func (b *Bar) ChatStatus() domain.ChatStatus {
	return b.chat
}

// SetUpload records the upload progress slot.
func (b *Bar) SetUpload(p domain.UploadProgress) {
	b.upload = p
}

// Upload returns the recorded upload progress.
func (b *Bar) Upload() domain.UploadProgress {
	return b.upload
}

// SetFileCount sets the number of stored notes. Negative hides it.
func (b *Bar) SetFileCount(n int) {
	b.fileCount = n
}

// SetMessage sets a transient message shown while idle.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetBindings sets the keybinding hints.
func (b *Bar) SetBindings(bindings []key.Binding) {
	b.bindings = bindings
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Busy reports whether a chat or upload is in flight.
func (b *Bar) Busy() bool {
	if b.upload.Status != domain.UploadIdle {
		return true
	}
	switch b.chat.Phase {
	case domain.PhaseSearching, domain.PhaseAnalyzing, domain.PhaseGenerating:
		return true
	}
	return false
}
