// Package cli implements the notely command line interface.
//
// Commands are package-level cobra commands registered in init. The core
// services they call are injected once at startup through SetServices.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
	"github.com/custodia-labs/notely-cli/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "notely",
	Short: "Chat with your notes from the terminal",
	Long: `Notely uploads your notes to the notes service and lets you ask
questions about them. Answers stream in as they are generated and cite the
notes they were drawn from.

Examples:
  notely auth login
  notely upload ~/notes/*.md
  notely chat send "what did I decide about the offsite?"
  notely tui`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services holds the core services the commands call.
type Services struct {
	Auth     driving.AuthService
	Chat     driving.ChatService
	Thread   driving.ThreadService
	Upload   driving.UploadService
	File     driving.FileService
	Search   driving.SearchService
	Settings driving.SettingsService
	APIKey   driving.APIKeyService

	// Config is the persisted client configuration.
	Config driven.ConfigStore

	// NewWatcher creates a watcher for a directory.
	NewWatcher func(root string) driven.FileWatcher

	// SetupErr is why the services could not be built, if they could not.
	SetupErr error
}

var (
	authService     driving.AuthService
	chatService     driving.ChatService
	threadService   driving.ThreadService
	uploadService   driving.UploadService
	fileService     driving.FileService
	searchService   driving.SearchService
	settingsService driving.SettingsService
	apiKeyService   driving.APIKeyService
	configStore     driven.ConfigStore
	newWatcher      func(root string) driven.FileWatcher
	setupErr        error
)

// SetServices injects the core services. Nil fields leave the matching
// commands unconfigured.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	authService = s.Auth
	chatService = s.Chat
	threadService = s.Thread
	uploadService = s.Upload
	fileService = s.File
	searchService = s.Search
	settingsService = s.Settings
	apiKeyService = s.APIKey
	configStore = s.Config
	newWatcher = s.NewWatcher
	setupErr = s.SetupErr
}

// notConfigured reports a missing service, with the setup failure that
// left it unset when there is one.
func notConfigured(name string) error {
	if setupErr != nil {
		return fmt.Errorf("%s not configured: %w", name, setupErr)
	}
	return fmt.Errorf("%s not configured", name)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print request and stream diagnostics to stderr")
}

// Execute runs the root command and returns the process exit code.
// Cancelling ctx aborts in-flight streams and uploads.
func Execute(ctx context.Context) int {
	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		return 1
	}
	return 0
}

// describeError turns domain errors into an actionable message.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return "your session has expired, run `notely auth login` to sign in again"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "not signed in, run `notely auth login` first"
	case errors.Is(err, domain.ErrNetwork):
		return fmt.Sprintf("could not reach the notes service (%v)", err)
	default:
		return err.Error()
	}
}
