package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/services"
)

var (
	queryDBPath string
	queryTopK   int
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryDBPath, "db", "", "path to the chunk database")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", services.DefaultTopK, "number of chunks to retrieve")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]

	if err := ensureQuery(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	topK := queryTopK
	if !cmd.Flags().Changed("top-k") && cfg != nil && cfg.TopK > 0 {
		topK = cfg.TopK
	}

	answer, err := queryService.Answer(ctx, question, topK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Answer)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range answer.Sources {
			line := fmt.Sprintf("  %s, chunk %d (%.3f)", src.SourceName, src.ChunkIndex, src.Score)
			if src.Page != domain.PageUnknown {
				line += fmt.Sprintf(", page %d", src.Page)
			}
			cmd.Println(line)
		}
	}
	return nil
}

// ensureQuery wires the query pipeline unless a test installed one.
func ensureQuery() error {
	if queryService != nil {
		return nil
	}
	if err := ensureStore(queryDBPath); err != nil {
		return err
	}
	embedder, err := embeddingService()
	if err != nil {
		return err
	}
	llm, err := llmService()
	if err != nil {
		return err
	}
	queryService = services.NewQueryService(chunkStore, embedder, llm)
	return nil
}
