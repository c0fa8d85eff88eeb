package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

var threadCmd = &cobra.Command{
	Use:     "thread",
	Aliases: []string{"threads"},
	Short:   "Manage chat threads",
}

var threadNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Start a new thread and make it active",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runThreadNew,
}

var threadListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your threads",
	RunE:  runThreadList,
}

var threadShowCmd = &cobra.Command{
	Use:   "show [thread-id]",
	Short: "Print a thread's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadShow,
}

var threadUseCmd = &cobra.Command{
	Use:   "use [thread-id]",
	Short: "Make a thread active for chat send",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadUse,
}

var threadDeleteCmd = &cobra.Command{
	Use:   "delete [thread-id]",
	Short: "Delete a thread",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadDelete,
}

var threadJSON bool

func init() {
	threadListCmd.Flags().BoolVar(&threadJSON, "json", false, "output threads as JSON")
	threadShowCmd.Flags().BoolVar(&threadJSON, "json", false, "output the thread as JSON")

	threadCmd.AddCommand(threadNewCmd)
	threadCmd.AddCommand(threadListCmd)
	threadCmd.AddCommand(threadShowCmd)
	threadCmd.AddCommand(threadUseCmd)
	threadCmd.AddCommand(threadDeleteCmd)
	rootCmd.AddCommand(threadCmd)
}

func runThreadNew(cmd *cobra.Command, args []string) error {
	if threadService == nil {
		return notConfigured("thread service")
	}

	title := ""
	if len(args) == 1 {
		title = args[0]
	}

	thread, err := threadService.Create(cmd.Context(), title)
	if err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}
	cmd.Printf("Created thread %s (%s)\n", thread.ID, thread.Title)
	return nil
}

func runThreadList(cmd *cobra.Command, _ []string) error {
	if threadService == nil {
		return notConfigured("thread service")
	}

	threads, err := threadService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list threads: %w", err)
	}

	if threadJSON {
		return outputJSON(cmd, threads)
	}

	if len(threads) == 0 {
		cmd.Println("No threads yet. Start one with `notely chat send`.")
		return nil
	}

	activeID := ""
	if active, ok := threadService.Active(); ok {
		activeID = active.ID
	}

	for i := range threads {
		marker := " "
		if threads[i].ID == activeID {
			marker = color.GreenString("*")
		}
		cmd.Printf("%s %s  %-40s  %s\n", marker, threads[i].ID, truncate(threads[i].Title, 40), formatTimestamp(threads[i].LastUpdated))
	}
	return nil
}

func runThreadShow(cmd *cobra.Command, args []string) error {
	if threadService == nil {
		return notConfigured("thread service")
	}

	thread, err := threadService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get thread: %w", err)
	}

	if threadJSON {
		return outputJSON(cmd, thread)
	}

	cmd.Printf("%s\n", color.New(color.Bold).Sprint(thread.Title))
	cmd.Println()
	for _, msg := range thread.Messages {
		label := "You"
		if msg.Role == domain.RoleAssistant {
			label = "Notely"
		}
		cmd.Printf("%s: %s\n", color.New(color.Bold).Sprint(label), msg.Content)
		printSources(cmd, msg.Sources)
		cmd.Println()
	}
	return nil
}

func runThreadUse(cmd *cobra.Command, args []string) error {
	if threadService == nil {
		return notConfigured("thread service")
	}

	thread, err := threadService.Select(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to select thread: %w", err)
	}
	cmd.Printf("Active thread: %s (%s)\n", thread.ID, thread.Title)
	return nil
}

func runThreadDelete(cmd *cobra.Command, args []string) error {
	if threadService == nil {
		return notConfigured("thread service")
	}

	if err := threadService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	cmd.Printf("Deleted thread %s\n", args[0])
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func formatTimestamp(ts domain.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}
