package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var indexReset bool

var indexCmd = &cobra.Command{
	Use:   "index [project-id]",
	Short: "Embed and push a project's chunks to the vector store",
	Long: `Embeds every stored chunk and upserts the vectors into the project's
collection. Pushing is idempotent per chunk, so an interrupted run can be
retried safely. Use --reset first when documents were re-chunked, to drop
vectors that no longer correspond to a stored chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexReset, "reset", false, "drop the collection before indexing")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	projectID := args[0]
	ctx := context.Background()

	if indexReset {
		if err := ragService.ResetIndex(ctx, projectID); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
		cmd.Println("Dropped existing collection.")
	}

	var bar *progressbar.ProgressBar
	indexed, err := ragService.IndexPush(ctx, projectID, func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("indexing"),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Set(done) //nolint:errcheck
	})
	if bar != nil {
		bar.Finish() //nolint:errcheck
	}
	if err != nil {
		if indexed > 0 {
			cmd.PrintErrf("Indexed %d chunks before the failure; retry to resume.\n", indexed)
		}
		return fmt.Errorf("index push: %w", err)
	}

	cmd.Printf("Indexed %d chunks for project %s.\n", indexed, projectID)
	return nil
}
