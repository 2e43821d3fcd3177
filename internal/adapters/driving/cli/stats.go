package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsDBPath string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show chunk store contents",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsDBPath, "db", "", "path to the chunk database")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := ensureStore(statsDBPath); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := chunkStore.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Chunks:    %d\n", stats.Chunks)
	return nil
}
