package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// MockChatService implements driving.ChatService for testing.
type MockChatService struct {
	SendFunc func(ctx context.Context, threadID, text string, observe driving.ChatObserver) (*driving.ChatResult, error)
	status   domain.ChatStatus
}

func (m *MockChatService) Send(
	ctx context.Context, threadID, text string, observe driving.ChatObserver,
) (*driving.ChatResult, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, threadID, text, observe)
	}
	return &driving.ChatResult{}, nil
}

func (m *MockChatService) Status() domain.ChatStatus {
	return m.status
}

// MockThreadService implements driving.ThreadService for testing.
type MockThreadService struct {
	mu        sync.Mutex
	active    domain.ChatThread
	hasActive bool
	created   int
}

func (m *MockThreadService) setActive(thread domain.ChatThread) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = thread
	m.hasActive = true
}

func (m *MockThreadService) Create(_ context.Context, title string) (*domain.ChatThread, error) {
	m.mu.Lock()
	m.created++
	m.mu.Unlock()
	if title == "" {
		title = domain.DefaultThreadTitle
	}
	thread := domain.ChatThread{ID: "new-thread", Title: title}
	m.setActive(thread)
	return &thread, nil
}

func (m *MockThreadService) List(context.Context) ([]domain.ChatThread, error) {
	return nil, nil
}

func (m *MockThreadService) Get(context.Context, string) (*domain.ChatThread, error) {
	return nil, domain.ErrNotFound
}

func (m *MockThreadService) Delete(context.Context, string) error {
	return nil
}

func (m *MockThreadService) Select(context.Context, string) (*domain.ChatThread, error) {
	return nil, domain.ErrNotFound
}

func (m *MockThreadService) Active() (domain.ChatThread, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active.Clone(), m.hasActive
}

// MockUploadService implements driving.UploadService for testing.
type MockUploadService struct {
	UploadBatchFunc func(ctx context.Context, paths []string, onProgress driving.ProgressFunc) (*domain.BatchSummary, error)
	count           int
}

func (m *MockUploadService) UploadBatch(
	ctx context.Context, paths []string, onProgress driving.ProgressFunc,
) (*domain.BatchSummary, error) {
	if m.UploadBatchFunc != nil {
		return m.UploadBatchFunc(ctx, paths, onProgress)
	}
	return &domain.BatchSummary{}, nil
}

func (m *MockUploadService) Progress() domain.UploadProgress {
	return domain.IdleUploadProgress()
}

func (m *MockUploadService) FileCount() int {
	return m.count
}

func newTestView() (*View, *MockChatService, *MockThreadService, *MockUploadService) {
	chat := &MockChatService{}
	threads := &MockThreadService{}
	uploads := &MockUploadService{count: 4}
	v := NewView(nil, nil, chat, threads, uploads, nil)
	v.SetDimensions(100, 30)
	return v, chat, threads, uploads
}

func typeText(v *View, text string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// drain runs bridged commands until the background work completes.
func drain(v *View, cmd tea.Cmd) {
	for i := 0; cmd != nil && i < 200; i++ {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = v.Update(msg)
	}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil, nil, nil, nil)

	require.NotNil(t, v)
	assert.False(t, v.Ready())
	assert.False(t, v.Busy())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_Init_LoadsActiveThread(t *testing.T) {
	v, _, threads, _ := newTestView()
	threads.setActive(domain.ChatThread{
		ID:    "t1",
		Title: "Trip notes",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "when do we leave?"},
		},
	})

	cmd := v.Init()

	require.NotNil(t, cmd)
	thread, ok := v.Thread()
	require.True(t, ok)
	assert.Equal(t, "t1", thread.ID)
	assert.Contains(t, v.View(), "Trip notes")
	assert.Contains(t, v.View(), "when do we leave?")
}

func TestView_SendStreamsAnswer(t *testing.T) {
	v, chat, threads, _ := newTestView()

	chat.SendFunc = func(_ context.Context, threadID, text string, observe driving.ChatObserver) (*driving.ChatResult, error) {
		assert.Empty(t, threadID)
		assert.Equal(t, "what is on my list?", text)

		threads.setActive(domain.ChatThread{ID: "t1", Messages: []domain.Message{
			{Role: domain.RoleUser, Content: text},
			{Role: domain.RoleAssistant, Pending: true},
		}})
		observe(driving.ChatEvent{Kind: driving.ChatEventThread, ThreadID: "t1"})
		observe(driving.ChatEvent{Kind: driving.ChatEventStatus, Status: domain.ChatStatus{Phase: domain.PhaseGenerating}})

		answer := domain.Message{
			Role:    domain.RoleAssistant,
			Content: "Milk and eggs.",
			Sources: []domain.SourceRef{{ID: "n1", Title: "Groceries", Score: 0.91}},
		}
		threads.setActive(domain.ChatThread{ID: "t1", Messages: []domain.Message{
			{Role: domain.RoleUser, Content: text},
			answer,
		}})
		observe(driving.ChatEvent{Kind: driving.ChatEventContent, ThreadID: "t1", Delta: "Milk and eggs."})
		return &driving.ChatResult{ThreadID: "t1", Answer: answer}, nil
	}

	typeText(v, "what is on my list?")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, v.Busy())
	assert.Empty(t, v.InputValue())

	drain(v, cmd)

	assert.False(t, v.Busy())
	assert.NoError(t, v.Err())
	view := v.View()
	assert.Contains(t, view, "Milk and eggs.")
	assert.Contains(t, view, "[1] Groceries (0.91)")
	assert.Equal(t, domain.PhaseIdle, v.StatusBar().ChatStatus().Phase)
}

func TestView_SendError(t *testing.T) {
	v, chat, _, _ := newTestView()
	chat.SendFunc = func(context.Context, string, string, driving.ChatObserver) (*driving.ChatResult, error) {
		return nil, domain.ErrNetwork
	}

	typeText(v, "hello")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(v, cmd)

	assert.ErrorIs(t, v.Err(), domain.ErrNetwork)
	assert.Equal(t, domain.PhaseErrored, v.StatusBar().ChatStatus().Phase)
	assert.Contains(t, v.View(), "Error:")
}

func TestView_SendReportsSkippedFrames(t *testing.T) {
	v, chat, _, _ := newTestView()
	chat.SendFunc = func(context.Context, string, string, driving.ChatObserver) (*driving.ChatResult, error) {
		return &driving.ChatResult{SkippedFrames: 2}, nil
	}

	typeText(v, "hello")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(v, cmd)

	assert.Contains(t, v.StatusBar().Message(), "2 malformed stream frames skipped")
}

func TestView_EmptyInputIgnored(t *testing.T) {
	v, _, _, _ := newTestView()

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Busy())
}

func TestView_BusyIgnoresSubmit(t *testing.T) {
	v, chat, _, _ := newTestView()
	release := make(chan struct{})
	calls := 0
	chat.SendFunc = func(context.Context, string, string, driving.ChatObserver) (*driving.ChatResult, error) {
		calls++
		<-release
		return &driving.ChatResult{}, nil
	}

	typeText(v, "first")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.Busy())

	typeText(v, "second")
	_, second := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second)
	assert.Equal(t, "second", v.InputValue())

	close(release)
	drain(v, cmd)
	assert.Equal(t, 1, calls)
}

func TestView_UploadCommand(t *testing.T) {
	v, _, _, uploads := newTestView()
	uploads.UploadBatchFunc = func(_ context.Context, paths []string, onProgress driving.ProgressFunc) (*domain.BatchSummary, error) {
		assert.Equal(t, []string{"a.md", "b.txt"}, paths)
		onProgress(domain.UploadProgress{CurrentFile: "a.md", TotalFiles: 2, Status: domain.UploadUploading})
		return &domain.BatchSummary{Uploaded: 1, Skipped: 1}, nil
	}

	typeText(v, "/upload a.md b.txt")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, messages.UploadProgressed{}, msg)
	_, cmd = v.Update(msg)
	assert.Equal(t, domain.UploadUploading, v.StatusBar().Upload().Status)

	msg = cmd()
	require.IsType(t, messages.UploadCompleted{}, msg)
	_, cmd = v.Update(msg)

	assert.False(t, v.Busy())
	assert.Equal(t, domain.UploadIdle, v.StatusBar().Upload().Status)
	assert.Equal(t, "1 uploaded, 1 skipped, 0 failed", v.StatusBar().Message())

	require.NotNil(t, cmd, "file count reload")
	loaded, ok := cmd().(messages.FileCountLoaded)
	require.True(t, ok)
	assert.Equal(t, 4, loaded.Count)
}

func TestView_UploadSingleFileShowsOutcome(t *testing.T) {
	v, _, _, uploads := newTestView()
	uploads.UploadBatchFunc = func(_ context.Context, paths []string, _ driving.ProgressFunc) (*domain.BatchSummary, error) {
		summary := &domain.BatchSummary{}
		summary.Add(domain.FileOutcome{Path: paths[0], Outcome: domain.OutcomeSkippedDuplicate})
		return summary, nil
	}

	typeText(v, "/upload notes.md")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(v, cmd)

	assert.Equal(t, "notes.md skipped (already uploaded)", v.StatusBar().Message())
}

func TestView_UploadCommandWithoutPaths(t *testing.T) {
	v, _, _, _ := newTestView()

	typeText(v, "/upload")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Contains(t, v.StatusBar().Message(), "Usage: /upload")
}

func TestView_UploadWithoutService(t *testing.T) {
	v := NewView(nil, nil, &MockChatService{}, &MockThreadService{}, nil, nil)
	v.SetDimensions(80, 24)

	typeText(v, "/upload notes.md")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), ErrNoUploadService)
}

func TestView_UploadError(t *testing.T) {
	v, _, _, uploads := newTestView()
	uploads.UploadBatchFunc = func(context.Context, []string, driving.ProgressFunc) (*domain.BatchSummary, error) {
		return &domain.BatchSummary{Failed: 1}, domain.ErrSessionExpired
	}

	typeText(v, "/upload a.md")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(v, cmd)

	assert.ErrorIs(t, v.Err(), domain.ErrSessionExpired)
	assert.Equal(t, "0 uploaded, 0 skipped, 1 failed", v.StatusBar().Message())
}

func TestView_ThreadsKey(t *testing.T) {
	v, _, _, _ := newTestView()

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlT})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewThreads}, cmd())
}

func TestView_NewThreadKey(t *testing.T) {
	v, _, threads, _ := newTestView()

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.ThreadCreated)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, 1, threads.created)

	v.Update(msg)
	thread, ok := v.Thread()
	require.True(t, ok)
	assert.Equal(t, "new-thread", thread.ID)
	assert.Contains(t, v.View(), domain.DefaultThreadTitle)
}

func TestView_ThreadSelectedError(t *testing.T) {
	v, _, _, _ := newTestView()

	v.Update(messages.ThreadSelected{Err: errors.New("gone")})

	assert.EqualError(t, v.Err(), "gone")
}

func TestView_FileCountLoaded(t *testing.T) {
	v, _, _, _ := newTestView()

	v.Update(messages.FileCountLoaded{Count: 7})

	assert.Contains(t, v.StatusBar().View(), "7 notes")
}

func TestView_SetDimensions(t *testing.T) {
	v := NewView(nil, nil, nil, nil, nil, nil)

	v.SetDimensions(120, 40)

	assert.True(t, v.Ready())
	assert.Equal(t, 120, v.StatusBar().Width())
	assert.Equal(t, 40-chromeHeight, v.transcript.Height)
}
