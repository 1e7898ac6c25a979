package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/mailroom/internal/config"
	"github.com/shaharia-lab/mailroom/internal/logger"
	"github.com/shaharia-lab/mailroom/internal/server"
	"github.com/shaharia-lab/mailroom/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP API for dispatching notifications.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (overrides PORT env var)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	log, err := logger.New(cfg.LogDir, cfg.SlogLevel())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	core, err := service.Initialize(cfg, service.Options{}, log)
	if err != nil {
		return fmt.Errorf("initializing dispatch core: %w", err)
	}
	defer core.Close()

	srv := server.New(core.Pipeline, cfg.Port, log)

	fmt.Fprintf(os.Stderr, "mailroom HTTP server running on http://localhost:%d\n", cfg.Port)
	fmt.Fprintf(os.Stderr, "  POST /api/send  → dispatch a notification\n")
	fmt.Fprintf(os.Stderr, "  GET  /health    → health check\n")
	fmt.Fprintf(os.Stderr, "  GET  /metrics   → Prometheus metrics\n")

	return srv.Run(ctx)
}
