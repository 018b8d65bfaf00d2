// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/embedding/hashed"
	ollamaembed "github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/llm/ollama"
	openaillm "github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/llm/openai"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// errAnthropicEmbeddings is returned when anthropic is chosen for embeddings.
var errAnthropicEmbeddings = errors.New("anthropic does not support embeddings, use ollama or openai")

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // nil when no LLM is reachable.
	Warnings         []string          // Non-fatal issues found while connecting.
	EmbeddingErr     error             // Set when EmbeddingService is the unavailable placeholder.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Init builds and validates both AI services. It never fails. An embedding
// provider that is unset or unreachable yields a placeholder whose calls
// return ErrEmbeddingUnavailable, so ingestion fails and queries answer
// without context. An unreachable LLM is left nil.
func Init(settings *domain.AppSettings) *InitResult {
	log := logger.With("ai")
	result := &InitResult{}

	embed, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err == nil && embed == nil {
		err = fmt.Errorf("%w: no embedding provider configured. Run 'bookrag settings wizard'",
			domain.ErrEmbeddingUnavailable)
	}
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		result.EmbeddingErr = err
		embed = &unavailableEmbedding{err: err, settings: settings.Embedding}
		log.Warn("Embeddings unavailable, ingestion will fail and answers will lack book context: %v", err)
	}
	result.EmbeddingService = embed

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	if llm == nil {
		log.Warn("No LLM available; answers will use fallback text")
	}
	result.LLMService = llm

	return result
}

// unavailableEmbedding stands in for an embedding provider that could not be
// reached at startup. Every call reports the startup error.
type unavailableEmbedding struct {
	err      error
	settings domain.EmbeddingSettings
}

func (u *unavailableEmbedding) Embed(context.Context, string) ([]float32, error) {
	return nil, u.err
}

func (u *unavailableEmbedding) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, u.err
}

func (u *unavailableEmbedding) Dimensions() int { return domain.DimensionsFor(u.settings) }

func (u *unavailableEmbedding) ModelName() string { return u.settings.Model }

func (u *unavailableEmbedding) Ping(context.Context) error { return u.err }

func (u *unavailableEmbedding) Close() error { return nil }

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'bookrag settings check' for details",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'bookrag settings check' for details",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
// Returns nil when the provider is not configured.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig creates an LLM service and pings it.
// Returns nil when the provider is not configured.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, errAnthropicEmbeddings
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.DimensionsFor(*settings),
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.DimensionsFor(*settings),
		})

	case domain.AIProviderHashed:
		return hashed.NewEmbeddingService(domain.DimensionsFor(*settings)), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
