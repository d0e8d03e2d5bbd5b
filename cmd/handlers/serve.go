package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"brevity/internal/config"
	"brevity/internal/logger"
	"brevity/internal/observability"
	"brevity/internal/persistence"
	"brevity/internal/pipeline"
	"brevity/internal/server"
)

const shutdownTimeout = 30 * time.Second

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port    int
		host    string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the Brevity HTTP API.

Routes:
  GET    /health
  POST   /api/summaries            analyze {url, content, title} and store the result
  GET    /api/summaries            list stored results (limit, offset)
  GET    /api/summaries/{id}       one result (?format=json|markdown|html)
  DELETE /api/summaries/{id}
  GET    /api/usage                counts by source and recent activity
  POST   /api/drafts/email         {analysis, title}
  POST   /api/drafts/social        {analysis, title}

Summary routes require the X-User-ID header.

Examples:
  brevity serve
  brevity serve --port 3000 --migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host, migrate)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")

	return cmd
}

func runServe(ctx context.Context, port int, host string, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.Get()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	p, err := pipeline.NewBuilder(cfg).Build(ctx)
	if err != nil {
		return err
	}

	log.Info("Connecting to database", "driver", cfg.Database.Driver)
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if migrate {
		if _, err := persistence.NewMigrationManager(db).Migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	recorder, err := observability.NewRecorder(cfg.PostHog)
	if err != nil {
		return err
	}
	defer recorder.Close()

	srv := server.New(serverCfg, p, db.Summaries(),
		server.WithPinger(db),
		server.WithRecorder(recorder),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", err)
			return err
		}
	}

	return nil
}
