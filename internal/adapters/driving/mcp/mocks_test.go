package mcp

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	lastLimit int
}

func (m *mockSearchService) Search(_ context.Context, _ string, limit int) ([]domain.SearchResult, error) {
	m.lastLimit = limit
	return m.results, m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	result       *driving.ChatResult
	err          error
	lastThreadID string
	lastText     string
}

func (m *mockChatService) Send(
	_ context.Context, threadID, text string, observe driving.ChatObserver,
) (*driving.ChatResult, error) {
	m.lastThreadID = threadID
	m.lastText = text
	observe(driving.ChatEvent{Kind: driving.ChatEventContent, Delta: "ignored"})
	return m.result, m.err
}

func (m *mockChatService) Status() domain.ChatStatus {
	return domain.ChatStatus{}
}

// mockThreadService is a mock implementation of driving.ThreadService.
type mockThreadService struct {
	threads []domain.ChatThread
	thread  *domain.ChatThread
	err     error
}

func (m *mockThreadService) Create(_ context.Context, _ string) (*domain.ChatThread, error) {
	return m.thread, m.err
}

func (m *mockThreadService) List(_ context.Context) ([]domain.ChatThread, error) {
	return m.threads, m.err
}

func (m *mockThreadService) Get(_ context.Context, _ string) (*domain.ChatThread, error) {
	return m.thread, m.err
}

func (m *mockThreadService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockThreadService) Select(_ context.Context, _ string) (*domain.ChatThread, error) {
	return m.thread, m.err
}

func (m *mockThreadService) Active() (domain.ChatThread, bool) {
	if m.thread == nil {
		return domain.ChatThread{}, false
	}
	return *m.thread, true
}

// mockFileService is a mock implementation of driving.FileService.
type mockFileService struct {
	count   int
	content string
	err     error
}

func (m *mockFileService) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

func (m *mockFileService) List(_ context.Context) ([]domain.FileRecord, error) {
	return nil, m.err
}

func (m *mockFileService) Content(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockFileService) History(_ context.Context, _ int) ([]domain.UploadRecord, error) {
	return nil, m.err
}

// mockUploadService is a mock implementation of driving.UploadService.
type mockUploadService struct {
	summary   *domain.BatchSummary
	err       error
	lastPaths []string
}

func (m *mockUploadService) UploadBatch(
	_ context.Context, paths []string, _ driving.ProgressFunc,
) (*domain.BatchSummary, error) {
	m.lastPaths = paths
	return m.summary, m.err
}

func (m *mockUploadService) Progress() domain.UploadProgress {
	return domain.IdleUploadProgress()
}

func (m *mockUploadService) FileCount() int {
	return 0
}
