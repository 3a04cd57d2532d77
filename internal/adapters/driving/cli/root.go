// Package cli implements the ragline command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragline/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragline/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragline/internal/chunker"
	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driving"
	"github.com/custodia-labs/ragline/internal/core/services"
	"github.com/custodia-labs/ragline/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	flagVerbose bool
	flagConfig  string
	flagDataDir string
)

// Services wired in PersistentPreRunE and shared by all commands.
var (
	settings       *domain.Settings
	ragService     driving.RAGService
	projectService driving.ProjectService

	// closers releases wired resources after the command finishes.
	closers []func()
)

var rootCmd = &cobra.Command{
	Use:   "ragline",
	Short: "Retrieval-augmented answering over your own documents",
	Long: `ragline ingests documents into projects, indexes them in a vector
store and answers questions grounded in the retrieved passages.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		teardownServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.ragline/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.ragline/data)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupServices loads configuration and wires the service graph. Commands
// that never touch services (version, help, completion) skip it.
func setupServices(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}
	// Tests inject their own services.
	if ragService != nil {
		return nil
	}

	logger.SetVerbose(flagVerbose)

	path := flagConfig
	if path == "" {
		var err error
		path, err = file.DefaultSettingsPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}

	var err error
	settings, err = file.LoadSettings(path)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	logger.Debug("Loaded settings from %s", path)

	store, err := sqlite.NewStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	closers = append(closers, func() { store.Close() })
	logger.Debug("Opened store at %s", store.Path())

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}
	closers = append(closers, func() { prompts.Close() })
	if err := prompts.Watch(); err != nil {
		logger.Debug("Prompt watcher unavailable: %v", err)
	}

	embedding, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return fmt.Errorf("create embedding service: %w", err)
	}
	closers = append(closers, func() { embedding.Close() })

	generation, err := ai.CreateGenerationService(&settings.Generation)
	if err != nil {
		return fmt.Errorf("create generation service: %w", err)
	}
	closers = append(closers, func() { generation.Close() })

	vectors, err := ai.CreateVectorIndex(context.Background(), &settings.Vector)
	if err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}
	closers = append(closers, func() { vectors.Close() })

	splitter, err := chunker.New(settings.Chunking.MaxChunkSize, settings.Chunking.Overlap)
	if err != nil {
		return fmt.Errorf("configure chunker: %w", err)
	}

	engine := services.NewPromptEngine(prompts, settings.DefaultLocale)
	ragService = services.NewRAGService(store, embedding, generation, vectors, engine, settings)
	projectService = services.NewProjectService(store, store, vectors, splitter)
	return nil
}

// teardownServices closes wired resources in reverse order.
func teardownServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
	ragService = nil
	projectService = nil
	settings = nil
}
