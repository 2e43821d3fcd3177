package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/adapters/driven/extractor/pdftotext"
	"github.com/docsage/docsage/internal/core/services"
	"github.com/docsage/docsage/internal/logger"
)

var (
	indexDBPath    string
	indexBatchSize int
	indexWatch     bool
)

var indexCmd = &cobra.Command{
	Use:   "index [pdfs-dir]",
	Short: "Index a directory of PDF files",
	Long: `Extracts text from every PDF under the given directory, splits it
into chunks, embeds each chunk and stores the result durably.
Interrupted runs resume from the last stored batch; already indexed
documents are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexDBPath, "db", "", "path to the chunk database")
	indexCmd.Flags().IntVar(&indexBatchSize, "batch-size", services.DefaultBatchSize, "chunks per embedding batch")
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "keep running and re-index files as they change")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	dir := args[0]

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("reading pdfs directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if err := ensureIndexer(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := indexerService.IndexDir(ctx, dir)
	if err != nil {
		return err
	}

	cmd.Printf("Indexed %d documents (%d skipped), %d chunks stored.\n",
		report.DocumentsIndexed, report.DocumentsSkipped, report.ChunksStored)

	if indexWatch {
		return watchDir(ctx, cmd, dir)
	}
	return nil
}

// ensureIndexer wires the indexing pipeline unless a test installed one.
func ensureIndexer() error {
	if indexerService != nil {
		return nil
	}
	if err := ensureStore(indexDBPath); err != nil {
		return err
	}
	embedder, err := embeddingService()
	if err != nil {
		return err
	}
	indexerService = services.NewIndexer(
		chunkStore,
		embedder,
		pdftotext.New(),
		services.WithBatchSize(indexBatchSize),
		services.WithRateLimiter(embedLimiter()),
	)
	return nil
}

// watchDir re-indexes PDFs as they are created or modified under dir,
// until the context is cancelled or an interrupt arrives.
func watchDir(ctx context.Context, cmd *cobra.Command, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the root and any existing subdirectories.
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)...\n", dir)

	// Debounce per path: editors and downloads fire many write events
	// for one file.
	pending := map[string]*time.Timer{}
	const settle = 2 * time.Second

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sigCh:
			cmd.Println("Stopping watch.")
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
					continue
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}

			path := event.Name
			if timer, ok := pending[path]; ok {
				timer.Stop()
			}
			pending[path] = time.AfterFunc(settle, func() {
				report, err := indexerService.IndexFile(ctx, path)
				if err != nil {
					logger.Error("Indexing %s: %v", path, err)
					return
				}
				if report.DocumentsIndexed > 0 {
					logger.Info("Re-indexed %s (%d chunks)", path, report.ChunksStored)
				}
			})
		}
	}
}
