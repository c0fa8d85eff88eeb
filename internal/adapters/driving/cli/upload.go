package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [path...]",
	Short: "Upload notes to the notes service",
	Long: `Upload files one at a time. Each file is checked locally first
(.txt, .pdf, .md, .doc, .docx up to 10 MB) and transient failures are
retried with a growing delay. A failed file does not stop the batch.

Directories are expanded to the supported files they contain when
--recursive is given.

Examples:
  notely upload meeting.md ideas.txt
  notely upload -r ~/notes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

var uploadRecursive bool

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload supported files inside directories")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return notConfigured("upload service")
	}

	paths, err := expandPaths(args, uploadRecursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		cmd.Println("No supported files found.")
		return nil
	}

	return uploadAndReport(cmd, paths)
}

// uploadAndReport runs one batch and prints a line per file. Batches of
// more than one file also get a summary line.
func uploadAndReport(cmd *cobra.Command, paths []string) error {
	summary, err := uploadService.UploadBatch(cmd.Context(), paths, func(p domain.UploadProgress) {
		if p.Status == domain.UploadUploading && p.CurrentFile != "" {
			logVerbose(cmd, "Uploading %s (%d/%d)", p.CurrentFile, p.CurrentFileIndex+1, p.TotalFiles)
		}
	})
	if summary != nil {
		for _, f := range summary.Files {
			cmd.Printf("%s %s\n", outcomeMark(f.Outcome), f.Message())
		}
		if summary.Total() > 1 {
			cmd.Println()
			cmd.Println(summary.String())
		}
	}
	if err != nil {
		return fmt.Errorf("upload stopped: %w", err)
	}
	return nil
}

func outcomeMark(o domain.UploadOutcome) string {
	switch o {
	case domain.OutcomeFailed:
		return color.RedString("✗")
	case domain.OutcomeSkippedDuplicate:
		return color.YellowString("-")
	case domain.OutcomeIndexedDegraded, domain.OutcomeSavedEmpty:
		return color.YellowString("!")
	default:
		return color.GreenString("✓")
	}
}

// expandPaths returns files in argument order. Directories are walked
// when recursive is set and otherwise passed through so the batch reports
// them as invalid.
func expandPaths(args []string, recursive bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() || !recursive {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != arg && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && domain.IsAllowedUploadExtension(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return paths, nil
}

func logVerbose(cmd *cobra.Command, format string, args ...any) {
	if verbose {
		cmd.PrintErrf(format+"\n", args...)
	}
}
