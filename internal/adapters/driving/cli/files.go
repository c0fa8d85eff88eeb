package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:     "files",
	Aliases: []string{"file"},
	Short:   "Inspect uploaded notes",
}

var filesCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored notes",
	RunE:  runFilesCount,
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored notes",
	RunE:  runFilesList,
}

var filesContentCmd = &cobra.Command{
	Use:   "content [file-id]",
	Short: "Print the extracted text of a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesContent,
}

var filesHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent upload outcomes recorded on this machine",
	RunE:  runFilesHistory,
}

var (
	filesJSON         bool
	filesHistoryLimit int
)

func init() {
	filesListCmd.Flags().BoolVar(&filesJSON, "json", false, "output files as JSON")
	filesHistoryCmd.Flags().IntVarP(&filesHistoryLimit, "limit", "n", 20, "maximum number of entries (0 = all)")

	filesCmd.AddCommand(filesCountCmd)
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesContentCmd)
	filesCmd.AddCommand(filesHistoryCmd)
	rootCmd.AddCommand(filesCmd)
}

func runFilesCount(cmd *cobra.Command, _ []string) error {
	if fileService == nil {
		return notConfigured("file service")
	}

	count, err := fileService.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count files: %w", err)
	}
	cmd.Printf("%d\n", count)
	return nil
}

func runFilesList(cmd *cobra.Command, _ []string) error {
	if fileService == nil {
		return notConfigured("file service")
	}

	files, err := fileService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if filesJSON {
		return outputJSON(cmd, files)
	}

	if len(files) == 0 {
		cmd.Println("No files uploaded yet.")
		return nil
	}

	for i := range files {
		name := files[i].Title
		if name == "" {
			name = files[i].Filename
		}
		cmd.Printf("%s  %-40s  %s\n", files[i].ID, truncate(name, 40), formatTimestamp(files[i].CreatedAt))
	}
	return nil
}

func runFilesContent(cmd *cobra.Command, args []string) error {
	if fileService == nil {
		return notConfigured("file service")
	}

	content, err := fileService.Content(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}
	cmd.Println(content)
	return nil
}

func runFilesHistory(cmd *cobra.Command, _ []string) error {
	if fileService == nil {
		return notConfigured("file service")
	}

	records, err := fileService.History(cmd.Context(), filesHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to read upload history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No uploads recorded.")
		return nil
	}

	for i := range records {
		cmd.Printf("%s  %s %-30s  %s\n",
			records[i].RecordedAt.Local().Format("2006-01-02 15:04"),
			outcomeMark(records[i].Outcome),
			truncate(filepath.Base(records[i].Path), 30),
			records[i].Message)
	}
	return nil
}
