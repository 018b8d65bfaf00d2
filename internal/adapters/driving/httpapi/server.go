// Package httpapi serves the question-answering pipeline over HTTP+JSON.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
	"github.com/Muhammadasif1986/ai-diven-book/internal/metrics"
)

const (
	shutdownTimeout = 10 * time.Second
	healthTimeout   = 5 * time.Second
)

// Services are the driving ports the API exposes.
// Sessions, Usage and Metrics are optional.
type Services struct {
	Answer    driving.AnswerService
	Ingestion driving.IngestionService
	Sessions  driving.SessionService
	Usage     driving.MetricsService
	Metrics   *metrics.Metrics
}

// Config tunes the HTTP surface.
type Config struct {
	Addr      string
	RateLimit domain.RateLimitSettings
	// AllowedOrigins lists browser origins allowed by CORS.
	AllowedOrigins []string
	// HealthChecks maps a dependency name to its ping. A nil func reports "unconfigured".
	HealthChecks map[string]PingFunc
	Version      string
}

// Server is the bookrag HTTP API.
type Server struct {
	svc     Services
	cfg     Config
	limiter *clientLimiter
	health  *healthChecker
	origins map[string]bool
	handler http.Handler
	log     *logger.Component
}

// NewServer wires routes and middleware.
func NewServer(svc Services, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = domain.DefaultAppSettings().Server.Addr
	}
	s := &Server{
		svc:     svc,
		cfg:     cfg,
		limiter: newClientLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		health: &healthChecker{
			checks:  cfg.HealthChecks,
			timeout: healthTimeout,
			version: cfg.Version,
			started: time.Now().UTC(),
		},
		origins: make(map[string]bool, len(cfg.AllowedOrigins)),
		log:     logger.With("http"),
	}
	for _, o := range cfg.AllowedOrigins {
		s.origins[o] = true
	}

	mux := http.NewServeMux()
	mux.Handle("POST /query", s.limited(s.handleQuery))
	mux.Handle("POST /query/selection", s.limited(s.handleSelectionQuery))
	mux.Handle("GET /query/history", s.limited(s.handleHistory))
	mux.Handle("POST /ingest", s.limited(s.handleIngest))
	mux.Handle("GET /books", s.limited(s.handleListBooks))
	mux.Handle("GET /books/{id}", s.limited(s.handleGetBook))
	mux.Handle("POST /sessions", s.limited(s.handleCreateSession))
	mux.Handle("DELETE /sessions/{token}", s.limited(s.handleDeleteSession))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /live", s.handleLive)
	if svc.Metrics != nil {
		mux.Handle("GET /metrics", svc.Metrics.Handler())
	}

	s.handler = s.cors(s.instrument(mux))
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("Listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.log.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
