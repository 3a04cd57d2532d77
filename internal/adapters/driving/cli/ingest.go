package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [project-id] [file...]",
	Short: "Ingest documents into a project",
	Long: `Reads each file, splits it into overlapping chunks and stores the
chunks in the project. Re-ingesting a file replaces its previous chunks.
The vector index is untouched until the next 'ragline index'.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	projectID := args[0]
	ctx := context.Background()

	total := 0
	for _, path := range args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		name := filepath.Base(path)
		doc, count, err := projectService.IngestDocument(ctx, projectID, name, string(data))
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}

		cmd.Printf("  %s %s\n", titleStyle.Render(name), dimStyle.Render(fmt.Sprintf("(%d chunks, document %s)", count, doc.ID)))
		total += count
	}

	cmd.Println()
	cmd.Printf("Ingested %d files, %d chunks. Run 'ragline index %s' to push them to the vector store.\n",
		len(args)-1, total, projectID)
	return nil
}
