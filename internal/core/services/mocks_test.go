package services

import (
	"context"
	"io"
	"sync"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
)

// mockNotesAPI is a NotesAPI whose behaviour is set per test.
// Unset functions return zero values.
type mockNotesAPI struct {
	mu sync.Mutex

	createThreadFn   func(title string) (*domain.ChatThread, error)
	listThreadsFn    func() ([]domain.ChatThread, error)
	getThreadFn      func(id string) (*domain.ChatThread, error)
	deleteThreadFn   func(id string) error
	streamChatFn     func(ctx context.Context, req driven.ChatRequest) (driven.FrameStream, error)
	uploadFileFn     func(ctx context.Context, filename string, content []byte) (*domain.FileUploadResult, error)
	fileCountFn      func() (int, error)
	listFilesFn      func() ([]domain.FileRecord, error)
	fileContentFn    func(id string) (string, error)
	searchFn         func(q domain.SearchQuery) ([]domain.SearchResult, error)
	getSettingsFn    func() (*domain.UserSettings, error)
	updateSettingsFn func(patch domain.SettingsPatch) (*domain.UserSettings, error)
	listKeysFn       func() ([]domain.APIKey, error)
	createKeyFn      func(req domain.CreateAPIKeyRequest) (*domain.APIKey, error)
	revokeKeyFn      func(id string) error

	chatRequests []driven.ChatRequest
	uploads      []string
	countCalls   int
	settingsGets int
}

var _ driven.NotesAPI = (*mockNotesAPI)(nil)

func (m *mockNotesAPI) CreateThread(_ context.Context, title string) (*domain.ChatThread, error) {
	if m.createThreadFn != nil {
		return m.createThreadFn(title)
	}
	return &domain.ChatThread{ID: "new-thread", Title: title}, nil
}

func (m *mockNotesAPI) ListThreads(_ context.Context) ([]domain.ChatThread, error) {
	if m.listThreadsFn != nil {
		return m.listThreadsFn()
	}
	return nil, nil
}

func (m *mockNotesAPI) GetThread(_ context.Context, id string) (*domain.ChatThread, error) {
	if m.getThreadFn != nil {
		return m.getThreadFn(id)
	}
	return nil, domain.NewHTTPError(404, "Thread not found")
}

func (m *mockNotesAPI) DeleteThread(_ context.Context, id string) error {
	if m.deleteThreadFn != nil {
		return m.deleteThreadFn(id)
	}
	return nil
}

func (m *mockNotesAPI) StreamChat(ctx context.Context, req driven.ChatRequest) (driven.FrameStream, error) {
	m.mu.Lock()
	m.chatRequests = append(m.chatRequests, req)
	m.mu.Unlock()
	if m.streamChatFn != nil {
		return m.streamChatFn(ctx, req)
	}
	return newFakeStream(domain.StreamFrame{Done: true}), nil
}

func (m *mockNotesAPI) UploadFile(ctx context.Context, filename string, content []byte) (*domain.FileUploadResult, error) {
	m.mu.Lock()
	m.uploads = append(m.uploads, filename)
	m.mu.Unlock()
	if m.uploadFileFn != nil {
		return m.uploadFileFn(ctx, filename, content)
	}
	return &domain.FileUploadResult{Status: "success", EmbeddingStatus: domain.EmbeddingCompleted, Filename: filename}, nil
}

func (m *mockNotesAPI) FileCount(_ context.Context) (int, error) {
	m.mu.Lock()
	m.countCalls++
	m.mu.Unlock()
	if m.fileCountFn != nil {
		return m.fileCountFn()
	}
	return 0, nil
}

func (m *mockNotesAPI) ListFiles(_ context.Context) ([]domain.FileRecord, error) {
	if m.listFilesFn != nil {
		return m.listFilesFn()
	}
	return nil, nil
}

func (m *mockNotesAPI) FileContent(_ context.Context, id string) (string, error) {
	if m.fileContentFn != nil {
		return m.fileContentFn(id)
	}
	return "", nil
}

func (m *mockNotesAPI) Search(_ context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(q)
	}
	return nil, nil
}

func (m *mockNotesAPI) GetSettings(_ context.Context) (*domain.UserSettings, error) {
	m.mu.Lock()
	m.settingsGets++
	m.mu.Unlock()
	if m.getSettingsFn != nil {
		return m.getSettingsFn()
	}
	return &domain.UserSettings{}, nil
}

func (m *mockNotesAPI) UpdateSettings(_ context.Context, patch domain.SettingsPatch) (*domain.UserSettings, error) {
	if m.updateSettingsFn != nil {
		return m.updateSettingsFn(patch)
	}
	return &domain.UserSettings{}, nil
}

func (m *mockNotesAPI) ListAPIKeys(_ context.Context) ([]domain.APIKey, error) {
	if m.listKeysFn != nil {
		return m.listKeysFn()
	}
	return nil, nil
}

func (m *mockNotesAPI) CreateAPIKey(_ context.Context, req domain.CreateAPIKeyRequest) (*domain.APIKey, error) {
	if m.createKeyFn != nil {
		return m.createKeyFn(req)
	}
	return &domain.APIKey{ID: "k1", Name: req.Name}, nil
}

func (m *mockNotesAPI) RevokeAPIKey(_ context.Context, id string) error {
	if m.revokeKeyFn != nil {
		return m.revokeKeyFn(id)
	}
	return nil
}

// fakeStream replays frames and errors in order, then io.EOF.
type fakeStream struct {
	mu     sync.Mutex
	items  []streamItem
	closed bool
}

type streamItem struct {
	frame domain.StreamFrame
	err   error
}

func newFakeStream(frames ...domain.StreamFrame) *fakeStream {
	s := &fakeStream{}
	for _, f := range frames {
		s.items = append(s.items, streamItem{frame: f})
	}
	return s
}

func (s *fakeStream) withError(err error) *fakeStream {
	s.items = append(s.items, streamItem{err: err})
	return s
}

func (s *fakeStream) Next() (domain.StreamFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.StreamFrame{}, io.ErrClosedPipe
	}
	if len(s.items) == 0 {
		return domain.StreamFrame{}, io.EOF
	}
	item := s.items[0]
	s.items = s.items[1:]
	return item.frame, item.err
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// blockingStream blocks in Next until closed.
type blockingStream struct {
	closeOnce sync.Once
	closed    chan struct{}
	reading   chan struct{}
	readOnce  sync.Once
}

func newBlockingStream() *blockingStream {
	return &blockingStream{closed: make(chan struct{}), reading: make(chan struct{})}
}

func (s *blockingStream) Next() (domain.StreamFrame, error) {
	s.readOnce.Do(func() { close(s.reading) })
	<-s.closed
	return domain.StreamFrame{}, io.ErrClosedPipe
}

func (s *blockingStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// mockSession is a SessionProvider with a fixed user.
type mockSession struct {
	token  string
	userID string
}

func (m *mockSession) CurrentToken(context.Context) (string, error) { return m.token, nil }
func (m *mockSession) Refresh(context.Context) (string, error)      { return m.token, nil }
func (m *mockSession) UserID() string                               { return m.userID }

func content(s string) domain.StreamFrame {
	return domain.StreamFrame{Content: s, HasContent: true}
}

func sources(refs ...domain.SourceRef) domain.StreamFrame {
	if refs == nil {
		refs = []domain.SourceRef{}
	}
	return domain.StreamFrame{Sources: refs, HasSources: true}
}

func done() domain.StreamFrame {
	return domain.StreamFrame{Done: true}
}
