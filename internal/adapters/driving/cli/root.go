// Package cli implements the docsage command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/docsage/docsage/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/docsage/docsage/internal/adapters/driven/llm/openai"
	"github.com/docsage/docsage/internal/adapters/driven/storage/sqlite"
	"github.com/docsage/docsage/internal/config"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// Services used by the commands. Wired lazily by ensureServices; tests
// replace them with stubs.
var (
	cfg            *config.Config
	chunkStore     driven.ChunkStore
	indexerService driving.Indexer
	queryService   driving.QueryService
)

var rootCmd = &cobra.Command{
	Use:   "docsage",
	Short: "Ask questions about your PDF library",
	Long: `docsage indexes directories of PDF files into a local vector store
and answers questions about them, grounded in the indexed text.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.docsage/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ensureConfig loads configuration once.
func ensureConfig() error {
	if cfg != nil {
		return nil
	}
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// ensureStore opens the chunk store once. Configuration is only consulted
// for the default database path, so store-only commands work without an
// API key.
func ensureStore(dbPath string) error {
	if chunkStore != nil {
		return nil
	}
	if dbPath == "" {
		if err := ensureConfig(); err == nil {
			dbPath = cfg.DBPath
		}
	}
	store, err := sqlite.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening chunk store: %w", err)
	}
	chunkStore = store
	return nil
}

// embeddingService builds the embedding adapter from config.
func embeddingService() (driven.EmbeddingService, error) {
	if err := ensureConfig(); err != nil {
		return nil, err
	}
	return openai.NewEmbeddingService(openai.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.EmbeddingModel,
	})
}

// llmService builds the completion adapter from config.
func llmService() (driven.LLMService, error) {
	if err := ensureConfig(); err != nil {
		return nil, err
	}
	return llmopenai.NewLLMService(llmopenai.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.ChatModel,
	})
}

// embedLimiter throttles embedding batches to stay under provider rate
// limits during large indexing runs.
func embedLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(2), 1)
}
