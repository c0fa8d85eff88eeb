package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Upload notes as they are created or changed",
	Long: `Watch a directory tree and upload supported files when they are
created or saved. Files are uploaded once writes have settled. Hidden files
and directories are ignored.

Press Ctrl+C to stop.

Examples:
  notely watch ~/notes`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return notConfigured("upload service")
	}
	if newWatcher == nil {
		return notConfigured("file watcher")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := newWatcher(args[0])
	defer watcher.Close()

	changes, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}

	cmd.Printf("Watching %s for new notes (Ctrl+C to stop)\n", args[0])

	for path := range changes {
		if err := uploadAndReport(cmd, []string{path}); err != nil {
			return err
		}
	}

	cmd.Println("Stopped watching.")
	return nil
}
