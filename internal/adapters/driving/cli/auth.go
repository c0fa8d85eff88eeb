package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/oauth"
	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// browserLoginTimeout bounds how long login waits for the redirect.
const browserLoginTimeout = 5 * time.Minute

// openBrowser is replaced in tests.
var openBrowser = oauth.OpenBrowser

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in to the notes service",
	Long: `Sign in, sign out and inspect the current session.

The session is stored in ~/.notely/session.toml and refreshed automatically
while it is valid. When a refresh fails you will be asked to sign in again.

Examples:
  notely auth login --email me@example.com
  notely auth login --provider github
  notely auth status
  notely auth logout`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password, or in the browser",
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the session",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the signed-in user",
	RunE:  runAuthStatus,
}

var (
	authLoginEmail    string
	authLoginProvider string
	authLoginPort     int
)

func init() {
	authLoginCmd.Flags().StringVar(&authLoginEmail, "email", "", "account email (prompted when omitted)")
	authLoginCmd.Flags().StringVar(&authLoginProvider, "provider", "", "sign in through an identity provider (e.g. github, google)")
	authLoginCmd.Flags().IntVar(&authLoginPort, "port", 0, "local port for the browser redirect (0 = any free port)")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return notConfigured("auth service")
	}

	if authLoginProvider != "" {
		return runBrowserLogin(cmd, authLoginProvider)
	}

	in := bufio.NewReader(cmd.InOrStdin())

	email := strings.TrimSpace(authLoginEmail)
	if email == "" {
		cmd.Print("Email: ")
		email = readLine(in)
	}
	cmd.Print("Password: ")
	password := readPassword(cmd, in)
	cmd.Println()

	session, err := authService.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Signed in as %s\n", displayUser(session.Email, session.UserID))
	return nil
}

// runBrowserLogin signs in with the PKCE authorization code flow, receiving
// the code on a loopback listener.
func runBrowserLogin(cmd *cobra.Command, provider string) error {
	state, err := oauth.GenerateState()
	if err != nil {
		return err
	}
	verifier, err := oauth.GenerateCodeVerifier()
	if err != nil {
		return err
	}

	server := oauth.NewCallbackServer(authLoginPort, state)
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting redirect listener: %w", err)
	}
	defer func() { _ = server.Stop() }()

	authURL, err := authService.AuthorizeURL(provider, server.RedirectURI(), oauth.GenerateCodeChallenge(verifier))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Opening your browser to sign in with %s...\n", provider)
	if err := openBrowser(authURL); err != nil {
		cmd.Printf("Could not open a browser. Visit this URL to continue:\n  %s\n", authURL)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), browserLoginTimeout)
	defer cancel()

	code, err := server.WaitForCode(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	session, err := authService.LoginWithCode(ctx, code, verifier)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Signed in as %s\n", displayUser(session.Email, session.UserID))
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return notConfigured("auth service")
	}
	if err := authService.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	cmd.Println("Signed out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return notConfigured("auth service")
	}

	session, ok := authService.Status()
	if !ok {
		cmd.Println("Not signed in. Run `notely auth login` to sign in.")
		return nil
	}

	cmd.Printf("Signed in as %s\n", displayUser(session.Email, session.UserID))
	if !session.Expiry.IsZero() {
		cmd.Printf("Access token expires %s\n", session.Expiry.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func displayUser(email, userID string) string {
	switch {
	case email != "" && userID != "":
		return fmt.Sprintf("%s (%s)", email, userID)
	case email != "":
		return email
	default:
		return userID
	}
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(r *bufio.Reader) string {
	input, _ := r.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command, fallback *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && f == os.Stdin && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(fallback)
}

// readAll reads piped input for commands that accept "-" as an argument.
func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
