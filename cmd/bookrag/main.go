// Command bookrag answers questions about an ingested book with citations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/ai"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/config/file"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/storage/sqlite"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/vectorindex/memory"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/vectorindex/qdrant"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/cli"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/httpapi"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/services"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
	"github.com/Muhammadasif1986/ai-diven-book/internal/metrics"
	"github.com/Muhammadasif1986/ai-diven-book/internal/normalisers"
	"github.com/Muhammadasif1986/ai-diven-book/internal/postprocessors"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.With("main")

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: getting home directory: %v\n", err)
		return err
	}
	baseDir := filepath.Join(home, ".bookrag")

	if err := file.LoadDotEnv(); err != nil {
		log.Warn("Loading .env: %v", err)
	}

	configStore, err := file.NewConfigStore(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return err
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading settings: %v\n", err)
		return err
	}

	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(baseDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening database: %v\n", err)
		return err
	}
	defer store.Close()

	prompts, err := file.NewPromptStore(filepath.Join(baseDir, "prompts"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading prompts: %v\n", err)
		return err
	}

	aiServices := ai.Init(settings)
	defer aiServices.Close()
	for _, w := range aiServices.Warnings {
		log.Debug("AI setup: %s", w)
	}

	index := vectorIndex(settings, store)
	defer index.Close()

	recorder := metrics.New(true)

	retrieval := services.NewRetrievalService(aiServices.EmbeddingService, index)
	retrieval.SetDefaultLimit(settings.Retrieval.Limit)
	retrieval.SetScoreThreshold(settings.Retrieval.ScoreThreshold)
	retrieval.SetSearchTimeout(settings.VectorIndex.Timeout)
	retrieval.SetRecorder(recorder)

	answer := services.NewAnswerService(retrieval, services.NewAnswerGenerator(aiServices.LLMService, prompts))
	answer.SetQuerySessionStore(store.QuerySessionStore())
	answer.SetRecorder(recorder)

	chunker, err := buildChunker(configStore)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	ingestion := services.NewIngestionService(chunker, aiServices.EmbeddingService, index, store.BookStore())
	ingestion.SetContentStore(store.ContentStore())
	ingestion.SetRecorder(recorder)

	checks := map[string]httpapi.PingFunc{
		"embedding":    aiServices.EmbeddingService.Ping,
		"llm":          nil,
		"vector_index": index.Ping,
		"database":     store.Ping,
	}
	if aiServices.LLMService != nil {
		checks["llm"] = aiServices.LLMService.Ping
	}

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{
		Answer:       answer,
		Ingestion:    ingestion,
		Sessions:     services.NewSessionService(store.SessionStore(), store.QuerySessionStore()),
		Usage:        services.NewMetricsService(store.MetricStore()),
		Settings:     settingsService,
		Normalisers:  normalisers.NewDefaultRegistry(),
		Metrics:      recorder,
		HealthChecks: checks,
	})

	return cli.Execute(ctx)
}

// buildChunker reads the [chunker] config table. Missing keys keep the chunker's defaults.
func buildChunker(cfg *file.ConfigStore) (driven.Chunker, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	name := cfg.GetString("chunker.name")
	if name == "" {
		name = postprocessors.DefaultChunker
	}
	options := make(map[string]any)
	for _, key := range []string{"target_tokens", "overlap_tokens"} {
		if v, ok := cfg.Get("chunker." + key); ok {
			options[key] = v
		}
	}
	return registry.Build(name, options)
}

// vectorIndex builds the configured backend. The sqlite backend shares the
// metadata database.
func vectorIndex(settings *domain.AppSettings, store *sqlite.Store) driven.VectorIndex {
	cfg := settings.VectorIndex
	switch cfg.Backend {
	case domain.VectorBackendQdrant:
		return qdrant.New(qdrant.Config{
			URL:        cfg.URL,
			APIKey:     cfg.APIKey,
			Collection: cfg.Collection,
			Timeout:    cfg.Timeout,
		})
	case domain.VectorBackendMemory:
		return memory.New()
	default:
		return store.VectorIndex(cfg.Collection)
	}
}
