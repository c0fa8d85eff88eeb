package driven

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// SessionProvider supplies the bearer token for calls to the notes service.
// The core borrows the token per request and never persists it.
type SessionProvider interface {
	// CurrentToken returns the current access token.
	// Returns an empty string when no session exists.
	CurrentToken(ctx context.Context) (string, error)

	// Refresh exchanges the refresh token for a new access token.
	// Returns the new token, or an error if the session cannot be renewed.
	Refresh(ctx context.Context) (string, error)

	// UserID returns the authenticated user's id, or empty when signed out.
	UserID() string
}

// Authenticator performs interactive sign-in against the identity provider.
type Authenticator interface {
	// Login signs in with email and password and stores the session.
	Login(ctx context.Context, email, password string) (*domain.Session, error)

	// AuthorizeURL returns the URL that starts a browser sign-in with an
	// external identity provider.
	AuthorizeURL(provider, redirectURI, codeChallenge string) (string, error)

	// ExchangeCode completes a browser sign-in and stores the session.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.Session, error)

	// Logout revokes and forgets the stored session.
	Logout(ctx context.Context) error

	// Session returns the stored session, if any.
	Session() (*domain.Session, bool)
}
