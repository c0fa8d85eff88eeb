package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search your notes",
	Long: `Searches your uploaded notes without asking for an answer.
Results combine semantic similarity with keyword matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return notConfigured("search service")
	}

	results, err := searchService.Search(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		if results == nil {
			results = []domain.SearchResult{}
		}
		return outputJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Title (Score)
		title := results[i].Title
		if title == "" {
			title = results[i].ID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		if len(results[i].MatchedKeywords) > 0 {
			cmd.Printf("      Keywords: %v\n", results[i].MatchedKeywords)
		}
		if results[i].Content != "" {
			cmd.Printf("      %s\n", truncate(results[i].Content, 120))
		}
		cmd.Println()
	}

	return nil
}
