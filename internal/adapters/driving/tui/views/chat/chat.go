// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// uploadCommand is typed in the input to upload files.
const uploadCommand = "/upload"

// eventBuffer bounds queued pipeline notifications. Status and progress
// updates beyond it are dropped; the completion message never is.
const eventBuffer = 64

// chromeHeight is the number of rows used by everything but the transcript.
const chromeHeight = 7

// View renders the active thread with an input line and a status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.ChatInput
	transcript viewport.Model
	statusbar  *status.Bar

	chat    driving.ChatService
	threads driving.ThreadService
	uploads driving.UploadService
	files   driving.FileService
	ctx     context.Context

	thread    domain.ChatThread
	hasThread bool

	// events is non-nil while a chat or upload is running.
	events chan tea.Msg

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view. uploads and files may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	chat driving.ChatService,
	threads driving.ThreadService,
	uploads driving.UploadService,
	files driving.FileService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewChatInput(s),
		transcript: viewport.New(80, 24-chromeHeight),
		statusbar:  status.NewBar(s, km),
		chat:       chat,
		threads:    threads,
		uploads:    uploads,
		files:      files,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the active thread and starts the input and spinner.
func (v *View) Init() tea.Cmd {
	v.refreshThread()
	return tea.Batch(v.input.Init(), v.statusbar.Init(), v.loadFileCount())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusbar, cmd = v.statusbar.Update(msg)
		return v, cmd

	case messages.ChatEvent:
		v.applyChatEvent(msg.Event)
		return v, waitForEvent(v.events)

	case messages.ChatCompleted:
		v.handleChatCompleted(msg)
		return v, nil

	case messages.UploadProgressed:
		v.statusbar.SetUpload(msg.Progress)
		return v, waitForEvent(v.events)

	case messages.UploadCompleted:
		return v, v.handleUploadCompleted(msg)

	case messages.FileCountLoaded:
		if msg.Err == nil {
			v.statusbar.SetFileCount(msg.Count)
		}
		return v, nil

	case messages.ThreadCreated:
		return v, v.handleThreadLoaded(msg.Thread, msg.Err)

	case messages.ThreadSelected:
		return v, v.handleThreadLoaded(msg.Thread, msg.Err)

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

	switch {
	case keymap.Matches(keyStr, v.keymap.Threads):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewThreads}
		}
	case keymap.Matches(keyStr, v.keymap.NewThread):
		if v.Busy() {
			return v, nil
		}
		return v, v.createThread()
	case keymap.Matches(keyStr, v.keymap.Send):
		return v.submit()
	}

	//nolint:exhaustive // only scrolling keys reach the transcript
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed text or runs an input command.
func (v *View) submit() (*View, tea.Cmd) {
	text := strings.TrimSpace(v.input.Value())
	if text == "" || v.Busy() {
		return v, nil
	}
	v.input.Reset()
	v.err = nil
	v.statusbar.SetMessage("")

	if text == uploadCommand || strings.HasPrefix(text, uploadCommand+" ") {
		paths := strings.Fields(strings.TrimPrefix(text, uploadCommand))
		if len(paths) == 0 {
			v.statusbar.SetMessage("Usage: /upload <path>...")
			return v, nil
		}
		return v, v.startUpload(paths)
	}

	return v, v.startChat(text)
}

// startChat runs Send in the background and bridges its events into
// the program.
func (v *View) startChat(text string) tea.Cmd {
	if v.chat == nil {
		v.err = ErrNoChatService
		return nil
	}

	ch := make(chan tea.Msg, eventBuffer)
	v.events = ch
	v.statusbar.SetChatStatus(domain.ChatStatus{Phase: domain.PhaseSearching})

	ctx := v.ctx
	go func() {
		observe := func(e driving.ChatEvent) {
			select {
			case ch <- messages.ChatEvent{Event: e}:
			default:
			}
		}
		result, err := v.chat.Send(ctx, "", text, observe)
		ch <- messages.ChatCompleted{Result: result, Err: err}
		close(ch)
	}()

	return waitForEvent(ch)
}

// startUpload runs an upload batch in the background.
func (v *View) startUpload(paths []string) tea.Cmd {
	if v.uploads == nil {
		v.err = ErrNoUploadService
		return nil
	}

	ch := make(chan tea.Msg, eventBuffer)
	v.events = ch

	ctx := v.ctx
	go func() {
		summary, err := v.uploads.UploadBatch(ctx, paths, func(p domain.UploadProgress) {
			select {
			case ch <- messages.UploadProgressed{Progress: p}:
			default:
			}
		})
		ch <- messages.UploadCompleted{Summary: summary, Err: err}
		close(ch)
	}()

	return waitForEvent(ch)
}

// waitForEvent reads the next bridged message.
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// applyChatEvent updates the status bar or transcript.
func (v *View) applyChatEvent(e driving.ChatEvent) {
	if e.Kind == driving.ChatEventStatus {
		v.statusbar.SetChatStatus(e.Status)
		return
	}
	v.refreshThread()
}

func (v *View) handleChatCompleted(msg messages.ChatCompleted) {
	v.events = nil
	v.refreshThread()

	if v.chat != nil {
		v.statusbar.SetChatStatus(v.chat.Status())
	}
	if msg.Err != nil {
		v.err = msg.Err
		if v.statusbar.ChatStatus().Phase != domain.PhaseErrored {
			v.statusbar.SetChatStatus(domain.ChatStatus{Phase: domain.PhaseErrored, Err: msg.Err})
		}
		return
	}
	if msg.Result != nil && msg.Result.SkippedFrames > 0 {
		v.statusbar.SetMessage(fmt.Sprintf("%d malformed stream frames skipped", msg.Result.SkippedFrames))
	}
}

func (v *View) handleUploadCompleted(msg messages.UploadCompleted) tea.Cmd {
	v.events = nil
	v.statusbar.SetUpload(domain.IdleUploadProgress())

	if msg.Err != nil {
		v.err = msg.Err
	}
	switch {
	case msg.Summary == nil:
	case msg.Summary.Total() == 1:
		v.statusbar.SetMessage(msg.Summary.Files[0].Message())
	default:
		v.statusbar.SetMessage(msg.Summary.String())
	}
	return v.loadFileCount()
}

func (v *View) handleThreadLoaded(thread *domain.ChatThread, err error) tea.Cmd {
	if err != nil {
		v.err = err
		return nil
	}
	v.err = nil
	if thread != nil {
		v.setThread(*thread)
	}
	v.statusbar.SetChatStatus(domain.ChatStatus{})
	return v.input.Focus()
}

// createThread starts a fresh thread.
func (v *View) createThread() tea.Cmd {
	return func() tea.Msg {
		if v.threads == nil {
			return messages.ErrorOccurred{Err: ErrNoThreadService}
		}
		thread, err := v.threads.Create(v.ctx, "")
		return messages.ThreadCreated{Thread: thread, Err: err}
	}
}

// loadFileCount fetches the number of stored notes.
func (v *View) loadFileCount() tea.Cmd {
	if v.files == nil {
		if v.uploads == nil {
			return nil
		}
		count := v.uploads.FileCount()
		return func() tea.Msg {
			return messages.FileCountLoaded{Count: count}
		}
	}
	return func() tea.Msg {
		count, err := v.files.Count(v.ctx)
		return messages.FileCountLoaded{Count: count, Err: err}
	}
}

// refreshThread re-reads the active thread from the store.
func (v *View) refreshThread() {
	if v.threads == nil {
		return
	}
	if thread, ok := v.threads.Active(); ok {
		v.setThread(thread)
	}
}

func (v *View) setThread(thread domain.ChatThread) {
	v.thread = thread
	v.hasThread = true
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

// renderTranscript formats the thread's messages.
func (v *View) renderTranscript() string {
	if len(v.thread.Messages) == 0 {
		return v.styles.Muted.Render("Ask anything about your notes, or type /upload <path> to add files.")
	}

	body := lipgloss.NewStyle().Width(max(v.width-2, 20))
	blocks := make([]string, 0, len(v.thread.Messages))
	for i := range v.thread.Messages {
		m := &v.thread.Messages[i]

		var label string
		if m.Role == domain.RoleUser {
			label = v.styles.UserLabel.Render("You")
		} else {
			label = v.styles.AssistantLabel.Render("Notely")
		}

		content := m.Content
		if content == "" && m.Pending {
			content = v.styles.Muted.Render("...")
		}

		lines := []string{label, body.Render(content)}
		for j, src := range m.Sources {
			title := src.Title
			if title == "" {
				title = src.ID
			}
			lines = append(lines, v.styles.Source.Render(fmt.Sprintf("  [%d] %s (%.2f)", j+1, title, src.Score)))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "Notely"
	if v.hasThread {
		t := v.thread.Title
		if t == "" {
			t = domain.DefaultThreadTitle
		}
		title += " | " + t
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render(title), "", v.transcript.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	}

	sections = append(sections, v.input.View(), v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Focus gives the input focus.
func (v *View) Focus() tea.Cmd {
	return v.input.Focus()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.transcript.Width = width
	v.transcript.Height = max(height-chromeHeight, 1)
	if v.hasThread {
		v.transcript.SetContent(v.renderTranscript())
	}
}

// Busy reports whether a chat or upload is running.
func (v *View) Busy() bool {
	return v.events != nil
}

// Thread returns the displayed thread.
func (v *View) Thread() (domain.ChatThread, bool) {
	return v.thread, v.hasThread
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// StatusBar returns the status bar component.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}

// InputValue returns the typed text.
func (v *View) InputValue() string {
	return v.input.Value()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
