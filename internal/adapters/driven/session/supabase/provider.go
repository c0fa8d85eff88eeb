// Package supabase implements the session provider over Supabase Auth.
//
// The provider signs in with email and password or through a browser PKCE
// flow against an external identity provider, keeps the resulting
// token pair in a TOML session file and exchanges the refresh token when
// the notes service rejects an access token.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/logger"
)

// Ensure Provider implements the interfaces.
var (
	_ driven.SessionProvider = (*Provider)(nil)
	_ driven.Authenticator   = (*Provider)(nil)
)

// SessionFileName is the session file inside the config directory.
const SessionFileName = "session.toml"

// Config holds configuration for the provider.
type Config struct {
	// URL is the Supabase project URL (required).
	URL string

	// AnonKey is the project's public anon key, sent as the apikey header.
	AnonKey string

	// SessionPath is the TOML file the session is stored in.
	// An empty path keeps the session in memory only.
	SessionPath string

	// HTTPClient sends auth requests (default: 30s timeout).
	HTTPClient *http.Client
}

// Provider holds the signed-in session.
type Provider struct {
	url         string
	anonKey     string
	sessionPath string
	http        *http.Client

	mu     sync.Mutex
	token  *oauth2.Token
	userID string
	email  string
}

// New creates a provider and loads any stored session.
func New(cfg Config) (*Provider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: supabase URL is required", domain.ErrInvalidInput)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{
		url:         strings.TrimRight(cfg.URL, "/"),
		anonKey:     cfg.AnonKey,
		sessionPath: cfg.SessionPath,
		http:        cfg.HTTPClient,
	}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

// CurrentToken returns the stored access token, or "" when signed out.
// An expired token is refreshed first; if that fails the stale token is
// returned and the notes service's 401 drives the recovery.
func (p *Provider) CurrentToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == nil {
		return "", nil
	}
	if !p.token.Expiry.IsZero() && !p.token.Valid() && p.token.RefreshToken != "" {
		if _, err := p.refreshLocked(ctx); err != nil {
			logger.Debug("supabase: proactive refresh failed: %v", err)
		}
	}
	return p.token.AccessToken, nil
}

// Refresh exchanges the refresh token for a new token pair.
// Failure leaves the stored session in place so the user can log in again.
func (p *Provider) Refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshLocked(ctx)
}

func (p *Provider) refreshLocked(ctx context.Context) (string, error) {
	if p.token == nil || p.token.RefreshToken == "" {
		return "", domain.ErrSessionExpired
	}

	resp, err := p.grant(ctx, "refresh_token", map[string]string{"refresh_token": p.token.RefreshToken})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, err)
	}
	p.apply(resp)
	if err := p.save(); err != nil {
		logger.Warn("supabase: failed to persist refreshed session: %v", err)
	}

	logger.Debug("supabase: session refreshed for %s", p.userID)
	return p.token.AccessToken, nil
}

// UserID returns the signed-in user's id.
func (p *Provider) UserID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userID
}

// Login signs in with email and password and stores the session.
func (p *Provider) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	resp, err := p.grant(ctx, "password", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.apply(resp)
	if p.email == "" {
		p.email = email
	}
	if err := p.save(); err != nil {
		return nil, err
	}
	return p.sessionLocked(), nil
}

// AuthorizeURL returns the Supabase authorize endpoint for an external
// identity provider using the PKCE S256 method.
func (p *Provider) AuthorizeURL(provider, redirectURI, codeChallenge string) (string, error) {
	if provider == "" || redirectURI == "" || codeChallenge == "" {
		return "", fmt.Errorf("%w: provider, redirect and code challenge are required", domain.ErrInvalidInput)
	}
	v := url.Values{}
	v.Set("provider", provider)
	v.Set("redirect_to", redirectURI)
	v.Set("code_challenge", codeChallenge)
	v.Set("code_challenge_method", "s256")
	return p.url + "/auth/v1/authorize?" + v.Encode(), nil
}

// ExchangeCode completes a browser sign-in and stores the session.
func (p *Provider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.Session, error) {
	if code == "" || codeVerifier == "" {
		return nil, fmt.Errorf("%w: code and verifier are required", domain.ErrInvalidInput)
	}

	resp, err := p.grant(ctx, "pkce", map[string]string{"auth_code": code, "code_verifier": codeVerifier})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.apply(resp)
	if err := p.save(); err != nil {
		return nil, err
	}
	return p.sessionLocked(), nil
}

// Logout revokes the session server-side (best effort) and forgets it.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != nil && p.token.AccessToken != "" {
		if err := p.revoke(ctx, p.token.AccessToken); err != nil {
			logger.Warn("supabase: logout request failed: %v", err)
		}
	}

	p.token = nil
	p.userID = ""
	p.email = ""

	if p.sessionPath == "" {
		return nil
	}
	if err := os.Remove(p.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// Session returns the stored session.
func (p *Provider) Session() (*domain.Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == nil {
		return nil, false
	}
	return p.sessionLocked(), true
}

func (p *Provider) sessionLocked() *domain.Session {
	return &domain.Session{
		AccessToken:  p.token.AccessToken,
		RefreshToken: p.token.RefreshToken,
		TokenType:    p.token.TokenType,
		Expiry:       p.token.Expiry,
		UserID:       p.userID,
		Email:        p.email,
	}
}

// tokenResponse is the Supabase Auth token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// errorResponse covers both error shapes Supabase Auth returns.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Msg         string `json:"msg"`
}

func (e errorResponse) message() string {
	switch {
	case e.Description != "":
		return e.Description
	case e.Msg != "":
		return e.Msg
	default:
		return e.Error
	}
}

func (p *Provider) grant(ctx context.Context, grantType string, body map[string]string) (*tokenResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := p.url + "/auth/v1/token?grant_type=" + grantType
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", p.anonKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&errResp); err == nil && errResp.message() != "" {
			return nil, fmt.Errorf("token error: %s", errResp.message())
		}
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, errors.New("token response carried no access token")
	}
	return &tokenResp, nil
}

func (p *Provider) revoke(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/auth/v1/logout", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", p.anonKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("logout failed with status %d", resp.StatusCode)
	}
	return nil
}

// apply stores a token response. Caller must hold p.mu.
func (p *Provider) apply(resp *tokenResponse) {
	tok := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
	}
	if tok.RefreshToken == "" && p.token != nil {
		tok.RefreshToken = p.token.RefreshToken
	}
	if resp.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	p.token = tok

	if resp.User.ID != "" {
		p.userID = resp.User.ID
	} else if sub := subject(tok.AccessToken); sub != "" {
		p.userID = sub
	}
	if resp.User.Email != "" {
		p.email = resp.User.Email
	}
}

// subject reads the sub claim of an access token without verifying it.
// The notes service verifies tokens; the client only needs the user id.
func subject(accessToken string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

func (p *Provider) load() error {
	if p.sessionPath == "" {
		return nil
	}

	data, err := os.ReadFile(p.sessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading session file: %w", err)
	}

	var s domain.Session
	if err := toml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing session file: %w", err)
	}
	if s.IsZero() {
		return nil
	}

	p.token = &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
	p.userID = s.UserID
	if p.userID == "" {
		p.userID = subject(s.AccessToken)
	}
	p.email = s.Email
	return nil
}

// save writes the session file. Caller must hold p.mu.
func (p *Provider) save() error {
	if p.sessionPath == "" || p.token == nil {
		return nil
	}

	data, err := toml.Marshal(p.sessionLocked())
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.sessionPath), 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(p.sessionPath, data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}
