package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askTopK       int
	askLocale     string
	askJSON       bool
	askShowPrompt bool
)

var askCmd = &cobra.Command{
	Use:   "ask [project-id] [question]",
	Short: "Answer a question using the project's documents",
	Long: `Retrieves the chunks most relevant to the question, assembles a
grounded prompt and asks the configured generation model for an answer.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "n", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().StringVar(&askLocale, "locale", "", "prompt template locale (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full answer as JSON")
	askCmd.Flags().BoolVar(&askShowPrompt, "show-prompt", false, "print the prompt sent to the model")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	projectID, question := args[0], args[1]

	answer, err := ragService.Answer(context.Background(), projectID, question, askTopK, askLocale)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if askShowPrompt {
		cmd.Println(titleStyle.Render("Prompt:"))
		cmd.Println(dimStyle.Render(answer.Prompt))
		cmd.Println()
	}

	cmd.Println(titleStyle.Render("Answer:"))
	cmd.Println(answer.Text)

	if len(answer.Chunks) > 0 {
		cmd.Println()
		cmd.Println(dimStyle.Render(fmt.Sprintf("Grounded on %d retrieved chunks.", len(answer.Chunks))))
	}
	return nil
}
