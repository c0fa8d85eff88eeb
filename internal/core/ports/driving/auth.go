package driving

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// AuthService signs the user in and out.
type AuthService interface {
	// Login signs in and returns the new session.
	Login(ctx context.Context, email, password string) (*domain.Session, error)

	// AuthorizeURL returns the URL that starts a browser sign-in.
	AuthorizeURL(provider, redirectURI, codeChallenge string) (string, error)

	// LoginWithCode completes a browser sign-in.
	LoginWithCode(ctx context.Context, code, codeVerifier string) (*domain.Session, error)

	// Logout forgets the session.
	Logout(ctx context.Context) error

	// Status returns the current session, if signed in.
	Status() (*domain.Session, bool)
}
