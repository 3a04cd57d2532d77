package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [project-id] [query]",
	Short: "Retrieve the chunks most similar to a query",
	Long: `Embeds the query and returns the top matching chunks from the
project's vector collection, ordered by similarity.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	projectID, query := args[0], args[1]

	results, err := ragService.Search(context.Background(), projectID, query, searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		snippet := results[i].Text
		if runes := []rune(snippet); len(runes) > 160 {
			snippet = string(runes[:160]) + "…"
		}
		snippet = strings.ReplaceAll(snippet, "\n", " ")

		cmd.Printf("  [%d] %s %s\n", i+1,
			scoreStyle.Render(fmt.Sprintf("%.3f", results[i].Score)),
			dimStyle.Render(fmt.Sprintf("doc %s #%d", results[i].DocumentID, results[i].Ordinal)))
		cmd.Printf("      %s\n", snippet)
		cmd.Println()
	}
	return nil
}
