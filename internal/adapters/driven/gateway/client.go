// Package gateway provides the HTTP adapter for the notes service.
//
// Client attaches the session's bearer token to every request, refreshes
// the session once on a 401 and maps failures onto the domain error
// taxonomy. API layers the typed endpoints on top, and FrameDecoder reads
// the chat event stream.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Gateway = (*Client)(nil)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// RequestIDHeader carries a per-request id for correlating logs.
const RequestIDHeader = "X-Request-ID"

// Config holds configuration for the gateway client.
type Config struct {
	// BaseURL is the notes service URL (required).
	BaseURL string

	// HTTPClient sends requests. It must not set a global timeout because
	// chat streams are open-ended (default: a new client).
	HTTPClient *http.Client

	// RequestsPerSecond limits outgoing requests. Zero disables the limit.
	RequestsPerSecond float64

	// Burst is the limiter burst size (default: 5).
	Burst int
}

// Client sends authenticated requests to the notes service.
type Client struct {
	baseURL string
	http    *http.Client
	session driven.SessionProvider
	limiter *rate.Limiter
}

// NewClient creates a gateway client.
func NewClient(cfg Config, session driven.SessionProvider) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway: base URL is required")
	}
	if session == nil {
		return nil, fmt.Errorf("gateway: session provider is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		session: session,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	return c, nil
}

// BaseURL returns the notes service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req with the current session token. A 401 triggers exactly one
// refresh; if it succeeds the request is replayed once and that outcome is
// returned as-is. Non-2xx responses become *domain.HTTPError.
func (c *Client) Do(ctx context.Context, req driven.Request) (*http.Response, error) {
	token, err := c.session.CurrentToken(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return nil, domain.ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req, body, contentType, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		logger.Debug("gateway: %s %s returned 401, refreshing session", req.Method, req.Endpoint)

		newToken, err := c.session.Refresh(ctx)
		if err != nil || newToken == "" {
			if err != nil {
				logger.Warn("gateway: session refresh failed: %v", err)
			}
			return nil, domain.ErrSessionExpired
		}

		resp, err = c.send(ctx, req, body, contentType, newToken)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeHTTPError(resp)
	}
	return resp, nil
}

// send performs one HTTP round trip. The body bytes are replayable.
func (c *Client) send(ctx context.Context, req driven.Request, body []byte, contentType, token string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}

	logger.Debug("gateway: %s %s (request %s)", req.Method, req.Endpoint, requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &domain.NetworkError{Err: err}
	}

	logger.Debug("gateway: %s %s -> %d (request %s)", req.Method, req.Endpoint, resp.StatusCode, requestID)
	return resp, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// filePartHeader mirrors multipart.Writer.CreateFormFile but sets the
// detected media type instead of application/octet-stream.
func filePartHeader(field, filename string, content []byte) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", mimetype.Detect(content).String())
	return h
}

// encodeBody serialises the request body once so it can be replayed.
// Multipart bodies use the writer's boundary content type and never a
// JSON content type.
func encodeBody(req driven.Request) ([]byte, string, error) {
	if req.File != nil {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		field := req.File.Field
		if field == "" {
			field = "file"
		}
		part, err := w.CreatePart(filePartHeader(field, req.File.Filename, req.File.Content))
		if err != nil {
			return nil, "", fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(req.File.Content); err != nil {
			return nil, "", fmt.Errorf("write form file: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("close multipart writer: %w", err)
		}
		return buf.Bytes(), w.FormDataContentType(), nil
	}

	if req.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}
	return data, "application/json", nil
}

// errorPayload is the error body convention of the notes service.
// detail is a string for handled errors and a list for validation errors.
type errorPayload struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// decodeHTTPError reads a non-2xx response into *domain.HTTPError.
func decodeHTTPError(resp *http.Response) error {
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return domain.NewHTTPError(resp.StatusCode, errorMessage(data))
}

func errorMessage(data []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}

	if len(payload.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(payload.Detail, &detail); err == nil && detail != "" {
			return detail
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 && items[0].Msg != "" {
			return items[0].Msg
		}
	}
	return payload.Message
}

// drain discards and closes a response body so the connection is reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
