package cli

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

func TestAuthLogin_PromptsForCredentials(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("me@example.com\nhunter22\n"))

	out, err := executeCommand("auth", "login")

	require.NoError(t, err)
	assert.Equal(t, "me@example.com", mocks.auth.lastEmail)
	assert.Equal(t, "hunter22", mocks.auth.lastPassword)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Signed in as me@example.com (user-1)")
	assert.NotContains(t, out, "hunter22")
}

func TestAuthLogin_EmailFlag(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("hunter22\n"))

	out, err := executeCommand("auth", "login", "--email", "flag@example.com")

	require.NoError(t, err)
	assert.Equal(t, "flag@example.com", mocks.auth.lastEmail)
	assert.Equal(t, "hunter22", mocks.auth.lastPassword)
	assert.NotContains(t, out, "Email: ")
}

func TestAuthLogin_Failure(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	mocks.auth.loginErr = domain.ErrUnauthenticated
	rootCmd.SetIn(strings.NewReader("me@example.com\nwrong\n"))

	_, err := executeCommand("auth", "login")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "login failed")
}

// fakeBrowser follows the authorize URL's redirect as the identity
// provider would, appending the given code.
func fakeBrowser(t *testing.T, code string) func(string) error {
	t.Helper()
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		redirect := u.Query().Get("redirect_to") + "&code=" + code
		resp, err := http.Get(redirect) //nolint:noctx // test helper
		require.NoError(t, err)
		resp.Body.Close()
		return nil
	}
}

func TestAuthLogin_Browser(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	prev := openBrowser
	openBrowser = fakeBrowser(t, "code-1")
	defer func() { openBrowser = prev }()

	out, err := executeCommand("auth", "login", "--provider", "github")

	require.NoError(t, err)
	assert.Equal(t, "code-1", mocks.auth.lastCode)
	assert.NotEmpty(t, mocks.auth.lastVerifier)
	assert.Contains(t, out, "sign in with github")
	assert.Contains(t, out, "Signed in as gh@example.com (user-2)")
}

func TestAuthLogin_BrowserFailure(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	mocks.auth.loginErr = domain.ErrUnauthenticated
	prev := openBrowser
	openBrowser = fakeBrowser(t, "code-1")
	defer func() { openBrowser = prev }()

	_, err := executeCommand("auth", "login", "--provider", "github")

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthLogin_BrowserUnavailablePrintsURL(t *testing.T) {
	_, cleanup := installMocks()
	defer cleanup()
	prev := openBrowser
	var followed func(string) error
	openBrowser = func(authURL string) error {
		// Simulate the user pasting the URL by hand.
		go func() { _ = followed(authURL) }()
		return errors.New("no display")
	}
	followed = fakeBrowser(t, "code-2")
	defer func() { openBrowser = prev }()

	out, err := executeCommand("auth", "login", "--provider", "google")

	require.NoError(t, err)
	assert.Contains(t, out, "Visit this URL")
	assert.Contains(t, out, "https://auth.test/authorize?")
}

func TestAuthLogout(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	mocks.auth.session = &domain.Session{UserID: "user-1"}

	out, err := executeCommand("auth", "logout")

	require.NoError(t, err)
	assert.True(t, mocks.auth.loggedOut)
	assert.Contains(t, out, "Signed out.")
}

func TestAuthStatus_NotSignedIn(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("auth", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestAuthStatus_SignedIn(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	mocks.auth.session = &domain.Session{
		UserID: "user-1",
		Email:  "me@example.com",
		Expiry: time.Now().Add(time.Hour),
	}

	out, err := executeCommand("auth", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as me@example.com (user-1)")
	assert.Contains(t, out, "Access token expires")
}

func TestDisplayUser(t *testing.T) {
	assert.Equal(t, "a@b.c (u1)", displayUser("a@b.c", "u1"))
	assert.Equal(t, "a@b.c", displayUser("a@b.c", ""))
	assert.Equal(t, "u1", displayUser("", "u1"))
}
