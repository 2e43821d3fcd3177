package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/adapters/driving/httpapi"
	"github.com/docsage/docsage/internal/config"
)

var (
	serveDBPath string
	serveAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query API",
	Long: `Starts an HTTP server exposing the query pipeline:
POST /query answers questions, GET /stats reports store contents,
GET /health reports liveness.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "path to the chunk database")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	queryDBPath = serveDBPath
	if err := ensureQuery(); err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" && cfg != nil {
		addr = cfg.Addr
	}
	if addr == "" {
		addr = config.DefaultAddr
	}

	topK := 0
	if cfg != nil {
		topK = cfg.TopK
	}

	srv, err := httpapi.New(httpapi.Config{ListenAddr: addr, DefaultTopK: topK}, queryService, chunkStore)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Serving on %s\n", addr)
	return srv.Start(ctx)
}
