package services

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
	"github.com/custodia-labs/notely-cli/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService signs the user in and out. Signing out also clears the
// local thread store and settings cache so no data leaks across users.
type AuthService struct {
	auth     driven.Authenticator
	store    driven.ThreadStore
	settings *SettingsService
}

// NewAuthService creates an auth service. store and settings may be nil.
func NewAuthService(auth driven.Authenticator, store driven.ThreadStore, settings *SettingsService) *AuthService {
	return &AuthService{auth: auth, store: store, settings: settings}
}

// Login signs in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.clearLocal()
	logger.Debug("auth: signed in as %s", session.Email)
	return session, nil
}

// AuthorizeURL returns the URL that starts a browser sign-in.
func (s *AuthService) AuthorizeURL(provider, redirectURI, codeChallenge string) (string, error) {
	return s.auth.AuthorizeURL(provider, redirectURI, codeChallenge)
}

// LoginWithCode completes a browser sign-in.
func (s *AuthService) LoginWithCode(ctx context.Context, code, codeVerifier string) (*domain.Session, error) {
	session, err := s.auth.ExchangeCode(ctx, code, codeVerifier)
	if err != nil {
		return nil, err
	}
	s.clearLocal()
	logger.Debug("auth: signed in via browser as %s", session.Email)
	return session, nil
}

// Logout forgets the session and local state.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		return err
	}
	s.clearLocal()
	return nil
}

// Status returns the current session.
func (s *AuthService) Status() (*domain.Session, bool) {
	return s.auth.Session()
}

func (s *AuthService) clearLocal() {
	if s.store != nil {
		s.store.ReplaceAll(nil)
	}
	if s.settings != nil {
		s.settings.Invalidate()
	}
}
