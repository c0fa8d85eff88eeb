package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
)

// Ensure API implements the interface.
var _ driven.NotesAPI = (*API)(nil)

// API is the typed client for the notes service endpoints.
type API struct {
	gw            driven.Gateway
	uploadTimeout time.Duration
}

// NewAPI creates the endpoint client. Uploads are bounded by
// uploadTimeout; the chat stream has no deadline.
func NewAPI(gw driven.Gateway, uploadTimeout time.Duration) *API {
	if uploadTimeout <= 0 {
		uploadTimeout = domain.DefaultUploadTimeout
	}
	return &API{gw: gw, uploadTimeout: uploadTimeout}
}

// doJSON sends req and decodes a JSON response into out (if non-nil).
func (a *API) doJSON(ctx context.Context, req driven.Request, out any) error {
	resp, err := a.gw.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.Endpoint, err)
	}
	return nil
}

// CreateThread creates a thread. An empty title uses the default.
func (a *API) CreateThread(ctx context.Context, title string) (*domain.ChatThread, error) {
	if title == "" {
		title = domain.DefaultThreadTitle
	}
	var thread domain.ChatThread
	err := a.doJSON(ctx, driven.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/threads",
		Body:     map[string]string{"title": title},
	}, &thread)
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListThreads returns the user's threads.
func (a *API) ListThreads(ctx context.Context) ([]domain.ChatThread, error) {
	var threads []domain.ChatThread
	if err := a.doJSON(ctx, driven.Request{Method: http.MethodGet, Endpoint: "/chat/threads"}, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// GetThread returns a thread with its messages.
func (a *API) GetThread(ctx context.Context, id string) (*domain.ChatThread, error) {
	var thread domain.ChatThread
	err := a.doJSON(ctx, driven.Request{
		Method:   http.MethodGet,
		Endpoint: "/chat/threads/" + url.PathEscape(id),
	}, &thread)
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// DeleteThread removes a thread.
func (a *API) DeleteThread(ctx context.Context, id string) error {
	return a.doJSON(ctx, driven.Request{
		Method:   http.MethodDelete,
		Endpoint: "/chat/threads/" + url.PathEscape(id),
	}, nil)
}

// StreamChat opens the chat event stream.
func (a *API) StreamChat(ctx context.Context, req driven.ChatRequest) (driven.FrameStream, error) {
	resp, err := a.gw.Do(ctx, driven.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/message",
		Body:     req,
		Accept:   "text/event-stream",
	})
	if err != nil {
		return nil, err
	}
	return &frameStream{FrameDecoder: NewFrameDecoder(resp.Body), body: resp.Body}, nil
}

// frameStream pairs a decoder with the response body it reads.
type frameStream struct {
	*FrameDecoder
	body io.Closer
}

func (s *frameStream) Close() error {
	return s.body.Close()
}

// UploadFile sends one file as the multipart field "file".
func (a *API) UploadFile(ctx context.Context, filename string, content []byte) (*domain.FileUploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.uploadTimeout)
	defer cancel()

	var result domain.FileUploadResult
	err := a.doJSON(ctx, driven.Request{
		Method:   http.MethodPost,
		Endpoint: "/files/upload",
		File:     &driven.FilePart{Field: "file", Filename: filename, Content: content},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FileCount returns the number of stored files.
func (a *API) FileCount(ctx context.Context) (int, error) {
	var body struct {
		Count int `json:"count"`
	}
	if err := a.doJSON(ctx, driven.Request{Method: http.MethodGet, Endpoint: "/files/count"}, &body); err != nil {
		return 0, err
	}
	return body.Count, nil
}

// ListFiles returns the stored files.
func (a *API) ListFiles(ctx context.Context) ([]domain.FileRecord, error) {
	var files []domain.FileRecord
	if err := a.doJSON(ctx, driven.Request{Method: http.MethodGet, Endpoint: "/files/list"}, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// FileContent returns the extracted text of a stored file. The service
// answers with a JSON string; a plain-text body is accepted as well.
func (a *API) FileContent(ctx context.Context, id string) (string, error) {
	resp, err := a.gw.Do(ctx, driven.Request{
		Method:   http.MethodGet,
		Endpoint: "/files/" + url.PathEscape(id) + "/content",
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.NetworkError{Err: err}
	}
	var content string
	if err := json.Unmarshal(data, &content); err != nil {
		return string(data), nil
	}
	return content, nil
}

// Search runs a search over the user's notes.
func (a *API) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	var results []domain.SearchResult
	err := a.doJSON(ctx, driven.Request{
		Method:   http.MethodPost,
		Endpoint: "/search",
		Body:     query,
	}, &results)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetSettings returns the user's settings.
func (a *API) GetSettings(ctx context.Context) (*domain.UserSettings, error) {
	var settings domain.UserSettings
	if err := a.doJSON(ctx, driven.Request{Method: http.MethodGet, Endpoint: "/settings"}, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings applies a partial settings update.
func (a *API) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (*domain.UserSettings, error) {
	var settings domain.UserSettings
	err := a.doJSON(ctx, driven.Request{
		Method:   http.MethodPatch,
		Endpoint: "/settings",
		Body:     patch,
	}, &settings)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// ListAPIKeys returns key metadata.
func (a *API) ListAPIKeys(ctx context.Context) ([]domain.APIKey, error) {
	var keys []domain.APIKey
	if err := a.doJSON(ctx, driven.Request{Method: http.MethodGet, Endpoint: "/api-keys"}, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// CreateAPIKey issues a new key.
func (a *API) CreateAPIKey(ctx context.Context, req domain.CreateAPIKeyRequest) (*domain.APIKey, error) {
	var key domain.APIKey
	err := a.doJSON(ctx, driven.Request{
		Method:   http.MethodPost,
		Endpoint: "/api-keys",
		Body:     req,
	}, &key)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// RevokeAPIKey revokes a key.
func (a *API) RevokeAPIKey(ctx context.Context, id string) error {
	return a.doJSON(ctx, driven.Request{
		Method:   http.MethodDelete,
		Endpoint: "/api-keys/" + url.PathEscape(id),
	}, nil)
}
