package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notely-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive chat UI",
	Long: `Launch the interactive terminal chat for your notes.

Answers stream into the active thread while the status bar shows
search, analysis and generation progress.

Controls:
  Enter             - Send message
  /upload <path>... - Upload files from the input line
  Ctrl+T            - Thread list (enter: open, d: delete, r: refresh)
  Ctrl+N            - New thread
  Ctrl+H            - Toggle help
  Esc               - Back
  Ctrl+C            - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	// Surface panics with a stack trace once the terminal is restored.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = errors.New("tui crashed")
		}
	}()

	if chatService == nil || threadService == nil {
		return notConfigured("chat service")
	}
	if authService != nil {
		if _, ok := authService.Status(); !ok {
			return domain.ErrUnauthenticated
		}
	}

	ports := tui.NewPorts(chatService, threadService, uploadService, fileService, searchService)

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
