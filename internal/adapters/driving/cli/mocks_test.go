package cli

import (
	"context"
	"net/url"
	"time"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// mockAuthService implements driving.AuthService for testing.
type mockAuthService struct {
	session      *domain.Session
	loginErr     error
	lastEmail    string
	lastPassword string
	lastCode     string
	lastVerifier string
	loggedOut    bool
}

func (m *mockAuthService) Login(_ context.Context, email, password string) (*domain.Session, error) {
	m.lastEmail = email
	m.lastPassword = password
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	m.session = &domain.Session{AccessToken: "at", UserID: "user-1", Email: email}
	return m.session, nil
}

func (m *mockAuthService) AuthorizeURL(provider, redirectURI, challenge string) (string, error) {
	v := url.Values{}
	v.Set("provider", provider)
	v.Set("redirect_to", redirectURI)
	v.Set("code_challenge", challenge)
	return "https://auth.test/authorize?" + v.Encode(), nil
}

func (m *mockAuthService) LoginWithCode(_ context.Context, code, verifier string) (*domain.Session, error) {
	m.lastCode = code
	m.lastVerifier = verifier
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	m.session = &domain.Session{AccessToken: "at", UserID: "user-2", Email: "gh@example.com"}
	return m.session, nil
}

func (m *mockAuthService) Logout(context.Context) error {
	m.loggedOut = true
	m.session = nil
	return nil
}

func (m *mockAuthService) Status() (*domain.Session, bool) {
	return m.session, m.session != nil
}

// mockChatService implements driving.ChatService for testing.
type mockChatService struct {
	SendFunc     func(ctx context.Context, threadID, text string, observe driving.ChatObserver) (*driving.ChatResult, error)
	lastThreadID string
	lastText     string
}

func (m *mockChatService) Send(
	ctx context.Context, threadID, text string, observe driving.ChatObserver,
) (*driving.ChatResult, error) {
	m.lastThreadID = threadID
	m.lastText = text
	if m.SendFunc != nil {
		return m.SendFunc(ctx, threadID, text, observe)
	}
	observe(driving.ChatEvent{Kind: driving.ChatEventStatus, Status: domain.ChatStatus{Phase: domain.PhaseSearching}})
	observe(driving.ChatEvent{Kind: driving.ChatEventContent, ThreadID: "t1", Delta: "Buy "})
	observe(driving.ChatEvent{Kind: driving.ChatEventContent, ThreadID: "t1", Delta: "milk."})
	return &driving.ChatResult{
		ThreadID: "t1",
		Answer: domain.Message{
			Role:    domain.RoleAssistant,
			Content: "Buy milk.",
			Sources: []domain.SourceRef{{ID: "n1", Title: "Groceries", Score: 0.87}},
		},
	}, nil
}

func (m *mockChatService) Status() domain.ChatStatus {
	return domain.ChatStatus{}
}

// mockThreadService implements driving.ThreadService for testing.
type mockThreadService struct {
	threads  []domain.ChatThread
	activeID string
	deleted  []string
	err      error
}

func (m *mockThreadService) Create(_ context.Context, title string) (*domain.ChatThread, error) {
	if m.err != nil {
		return nil, m.err
	}
	if title == "" {
		title = domain.DefaultThreadTitle
	}
	thread := domain.ChatThread{ID: "t-new", Title: title}
	m.threads = append(m.threads, thread)
	m.activeID = thread.ID
	return &thread, nil
}

func (m *mockThreadService) List(context.Context) ([]domain.ChatThread, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.threads, nil
}

func (m *mockThreadService) Get(_ context.Context, id string) (*domain.ChatThread, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.threads {
		if m.threads[i].ID == id {
			thread := m.threads[i]
			return &thread, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockThreadService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockThreadService) Select(ctx context.Context, id string) (*domain.ChatThread, error) {
	thread, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.activeID = id
	return thread, nil
}

func (m *mockThreadService) Active() (domain.ChatThread, bool) {
	for i := range m.threads {
		if m.threads[i].ID == m.activeID {
			return m.threads[i], true
		}
	}
	return domain.ChatThread{}, false
}

// mockUploadService implements driving.UploadService for testing.
type mockUploadService struct {
	UploadBatchFunc func(ctx context.Context, paths []string, onProgress driving.ProgressFunc) (*domain.BatchSummary, error)
	batches         [][]string
}

func (m *mockUploadService) UploadBatch(
	ctx context.Context, paths []string, onProgress driving.ProgressFunc,
) (*domain.BatchSummary, error) {
	m.batches = append(m.batches, paths)
	if m.UploadBatchFunc != nil {
		return m.UploadBatchFunc(ctx, paths, onProgress)
	}
	summary := &domain.BatchSummary{}
	for i, p := range paths {
		onProgress(domain.UploadProgress{CurrentFile: p, CurrentFileIndex: i, TotalFiles: len(paths), Status: domain.UploadUploading})
		summary.Add(domain.FileOutcome{Path: p, Outcome: domain.OutcomeIndexed})
	}
	return summary, nil
}

func (m *mockUploadService) Progress() domain.UploadProgress {
	return domain.IdleUploadProgress()
}

func (m *mockUploadService) FileCount() int {
	return 0
}

// mockFileService implements driving.FileService for testing.
type mockFileService struct {
	count       int
	files       []domain.FileRecord
	content     map[string]string
	history     []domain.UploadRecord
	lastLimit   int
	countCalled bool
}

func (m *mockFileService) Count(context.Context) (int, error) {
	m.countCalled = true
	return m.count, nil
}

func (m *mockFileService) List(context.Context) ([]domain.FileRecord, error) {
	return m.files, nil
}

func (m *mockFileService) Content(_ context.Context, id string) (string, error) {
	content, ok := m.content[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return content, nil
}

func (m *mockFileService) History(_ context.Context, limit int) ([]domain.UploadRecord, error) {
	m.lastLimit = limit
	return m.history, nil
}

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	results   []domain.SearchResult
	lastQuery string
	lastLimit int
}

func (m *mockSearchService) Search(_ context.Context, query string, limit int) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.results, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings  domain.UserSettings
	lastPatch domain.SettingsPatch
	err       error
}

func (m *mockSettingsService) Get(context.Context) (*domain.UserSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Update(_ context.Context, patch domain.SettingsPatch) (*domain.UserSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastPatch = patch
	s := m.settings
	return &s, nil
}

// mockAPIKeyService implements driving.APIKeyService for testing.
type mockAPIKeyService struct {
	keys        []domain.APIKey
	lastRequest domain.CreateAPIKeyRequest
	revoked     []string
}

func (m *mockAPIKeyService) List(context.Context) ([]domain.APIKey, error) {
	return m.keys, nil
}

func (m *mockAPIKeyService) Create(_ context.Context, req domain.CreateAPIKeyRequest) (*domain.APIKey, error) {
	m.lastRequest = req
	return &domain.APIKey{ID: "k1", Name: req.Name, KeyPrefix: "nk_abc", Key: "nk_abcdef123456"}, nil
}

func (m *mockAPIKeyService) Revoke(_ context.Context, id string) error {
	m.revoked = append(m.revoked, id)
	return nil
}

// mockWatcher implements driven.FileWatcher, emitting a fixed list of paths.
type mockWatcher struct {
	root   string
	paths  []string
	closed bool
}

func (m *mockWatcher) Watch(context.Context) (<-chan string, error) {
	ch := make(chan string, len(m.paths))
	for _, p := range m.paths {
		ch <- p
	}
	close(ch)
	return ch, nil
}

func (m *mockWatcher) Close() error {
	m.closed = true
	return nil
}

// testMocks gives tests access to the installed mocks.
type testMocks struct {
	auth     *mockAuthService
	chat     *mockChatService
	thread   *mockThreadService
	upload   *mockUploadService
	file     *mockFileService
	search   *mockSearchService
	settings *mockSettingsService
	apiKey   *mockAPIKeyService
	watcher  *mockWatcher
}

// installMocks injects fresh mocks and returns a cleanup that restores
// the unconfigured state and resets flag values between runs.
func installMocks() (*testMocks, func()) {
	updated := domain.NewTimestamp(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC))
	m := &testMocks{
		auth: &mockAuthService{},
		chat: &mockChatService{},
		thread: &mockThreadService{
			threads: []domain.ChatThread{
				{ID: "t1", Title: "Groceries", LastUpdated: updated, Messages: []domain.Message{
					{Role: domain.RoleUser, Content: "what do I need?"},
					{Role: domain.RoleAssistant, Content: "Milk.", Sources: []domain.SourceRef{{ID: "n1", Title: "List", Score: 0.9}}},
				}},
				{ID: "t2", Title: "Offsite", LastUpdated: updated},
			},
			activeID: "t1",
		},
		upload: &mockUploadService{},
		file:   &mockFileService{count: 3, content: map[string]string{}},
		search: &mockSearchService{results: []domain.SearchResult{
			{ID: "n1", Title: "Groceries", Score: 0.92, Content: "milk, eggs", MatchedKeywords: []string{"milk"}},
		}},
		settings: &mockSettingsService{},
		apiKey:   &mockAPIKeyService{},
		watcher:  &mockWatcher{},
	}

	SetServices(&Services{
		Auth:     m.auth,
		Chat:     m.chat,
		Thread:   m.thread,
		Upload:   m.upload,
		File:     m.file,
		Search:   m.search,
		Settings: m.settings,
		APIKey:   m.apiKey,
		NewWatcher: func(root string) driven.FileWatcher {
			m.watcher.root = root
			return m.watcher
		},
	})

	return m, func() {
		SetServices(nil)
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

// setupTestServices injects default mocks and returns the cleanup.
func setupTestServices() func() {
	_, cleanup := installMocks()
	return cleanup
}

func resetFlags() {
	verbose = false
	authLoginEmail = ""
	authLoginProvider = ""
	authLoginPort = 0
	chatThreadID = ""
	chatJSON = false
	threadJSON = false
	uploadRecursive = false
	filesJSON = false
	filesHistoryLimit = 20
	searchLimit = 10
	searchJSON = false
	settingsJSON = false
	keysExpiresDays = 0
}
