package status

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, domain.PhaseIdle, bar.ChatStatus().Phase)
	assert.Equal(t, domain.UploadIdle, bar.Upload().Status)
	assert.Equal(t, "", bar.Message())
	assert.False(t, bar.Busy())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotEmpty(t, bar.bindings)
}

func TestStatusBar_Init(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.NotNil(t, bar.Init(), "spinner tick should start")
}

func TestStatusBar_Update_IgnoresKeys(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_View_Ready(t *testing.T) {
	bar := NewBar(nil, nil)

	view := bar.View()

	assert.Contains(t, view, "Ready")
	assert.Contains(t, view, "enter: send")
}

func TestStatusBar_View_FileCount(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetFileCount(12)

	assert.Contains(t, bar.View(), "12 notes")
}

func TestStatusBar_View_ChatPhases(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)

	bar.SetChatStatus(domain.ChatStatus{Phase: domain.PhaseSearching, Progress: 40})
	assert.Contains(t, bar.View(), "Searching your notes")
	assert.True(t, bar.Busy())

	bar.SetChatStatus(domain.ChatStatus{Phase: domain.PhaseAnalyzing})
	assert.Contains(t, bar.View(), "Analyzing sources")

	bar.SetChatStatus(domain.ChatStatus{Phase: domain.PhaseGenerating})
	assert.Contains(t, bar.View(), "Generating answer")

	bar.SetChatStatus(domain.ChatStatus{Phase: domain.PhaseErrored, Err: errors.New("boom")})
	assert.Contains(t, bar.View(), "Error: boom")
	assert.False(t, bar.Busy())
}

func TestStatusBar_View_UploadTakesPrecedence(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetChatStatus(domain.ChatStatus{Phase: domain.PhaseGenerating})

	bar.SetUpload(domain.UploadProgress{
		CurrentFile:      "ideas.md",
		CurrentFileIndex: 1,
		TotalFiles:       3,
		Status:           domain.UploadUploading,
	})

	view := bar.View()
	assert.Contains(t, view, "Uploading ideas.md (2/3)")
	assert.True(t, bar.Busy())

	bar.SetUpload(domain.UploadProgress{CurrentFile: "ideas.md", CurrentFileIndex: 1, TotalFiles: 3, Status: domain.UploadProcessing})
	assert.Contains(t, bar.View(), "Processing ideas.md")
}

func TestStatusBar_Message(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetMessage("2 uploaded, 0 skipped, 0 failed")

	assert.Equal(t, "2 uploaded, 0 skipped, 0 failed", bar.Message())
	assert.Contains(t, bar.View(), "2 uploaded")
}

func TestStatusBar_SetWidth(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetWidth(120)

	assert.Equal(t, 120, bar.Width())
}
