package driven

import "github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"

// AIConfigValidator checks AI provider configurations by contacting the provider.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider.
	// Returns nil if the provider is reachable or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the LLM provider.
	// Returns nil if the provider is reachable or not configured.
	ValidateLLM(config *domain.LLMSettings) error
}
