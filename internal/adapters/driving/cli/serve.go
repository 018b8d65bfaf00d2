package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/httpapi"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
)

const defaultRetentionDays = 30

var (
	serveAddr          string
	serveCleanupEvery  time.Duration
	serveRetentionDays int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the question-answering pipeline over HTTP+JSON.

Routes:
  POST   /query            ask about the whole book
  POST   /query/selection  ask about a selected passage
  GET    /query/history    recent questions for a session
  POST   /ingest           index a book
  GET    /books            list books
  GET    /books/{id}       one book
  POST   /sessions         start a session
  DELETE /sessions/{token} end a session
  GET    /health           dependency status
  GET    /metrics          Prometheus metrics

While serving, expired sessions and old usage metrics are removed periodically.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, e.g. :8000)")
	serveCmd.Flags().DurationVar(&serveCleanupEvery, "cleanup-interval", time.Hour, "how often to remove expired data (0 disables)")
	serveCmd.Flags().IntVar(&serveRetentionDays, "retention-days", defaultRetentionDays, "days of usage metrics to keep")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return errAnswerNotConfigured
	}

	cfg := httpapi.Config{
		Addr:         serveAddr,
		HealthChecks: healthChecks,
		Version:      version,
	}
	defaults := domain.DefaultAppSettings()
	cfg.RateLimit = defaults.RateLimit
	cfg.AllowedOrigins = defaults.Server.AllowedOrigins
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cfg.RateLimit = settings.RateLimit
		cfg.AllowedOrigins = settings.Server.AllowedOrigins
		if cfg.Addr == "" {
			cfg.Addr = settings.Server.Addr
		}
	}

	server := httpapi.NewServer(httpapi.Services{
		Answer:    answerService,
		Ingestion: ingestionService,
		Sessions:  sessionService,
		Usage:     usageService,
		Metrics:   promMetrics,
	}, cfg)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Run(ctx)
	})
	if serveCleanupEvery > 0 {
		g.Go(func() error {
			runCleanup(ctx, serveCleanupEvery, serveRetentionDays)
			return nil
		})
	}
	return g.Wait()
}

// runCleanup removes expired sessions and stale metrics until ctx is done.
func runCleanup(ctx context.Context, every time.Duration, retentionDays int) {
	log := logger.With("cleanup")
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupOnce(ctx, log, retentionDays)
		}
	}
}

func cleanupOnce(ctx context.Context, log *logger.Component, retentionDays int) {
	if sessionService != nil {
		n, err := sessionService.CleanupExpired(ctx)
		if err != nil {
			log.Warn("Session cleanup failed: %v", err)
		} else if n > 0 {
			log.Info("Removed %d expired sessions", n)
		}
	}
	if usageService != nil {
		n, err := usageService.CleanupOld(ctx, retentionDays)
		if err != nil {
			log.Warn("Metrics cleanup failed: %v", err)
		} else if n > 0 {
			log.Info("Removed %d old metrics", n)
		}
	}
}
