package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyVectorBackend   = "vector.backend"
	keyVectorURL       = "vector.url"
	keyVectorAPIKey    = "vector.api_key"
	keyVectorColl      = "vector.collection"
	keyVectorTimeout   = "vector.timeout"
	keyRetrievalLimit  = "retrieval.limit"
	keyRetrievalThresh = "retrieval.score_threshold"
	keyRateRequests    = "rate_limit.requests"
	keyRateWindow      = "rate_limit.window"
	keyServerAddr      = "server.addr"
	keyServerOrigins   = "server.allowed_origins"
	keyDataDir         = "data_dir"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// An API key with no provider selects OpenAI, so a bare OPENAI_API_KEY works.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, keyEmbedAPIKey),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDims),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, keyLLMAPIKey),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:    s.getBackend(defaults.VectorIndex.Backend),
			URL:        s.getString(keyVectorURL, defaults.VectorIndex.URL),
			APIKey:     s.configStore.GetString(keyVectorAPIKey),
			Collection: s.getString(keyVectorColl, defaults.VectorIndex.Collection),
			Timeout:    s.getDuration(keyVectorTimeout, defaults.VectorIndex.Timeout),
		},
		Retrieval: domain.RetrievalSettings{
			Limit:          s.getInt(keyRetrievalLimit, defaults.Retrieval.Limit),
			ScoreThreshold: s.configStore.GetFloat(keyRetrievalThresh),
		},
		RateLimit: domain.RateLimitSettings{
			Requests: s.getInt(keyRateRequests, defaults.RateLimit.Requests),
			Window:   s.getDuration(keyRateWindow, defaults.RateLimit.Window),
		},
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, defaults.Server.Addr),
			AllowedOrigins: defaults.Server.AllowedOrigins,
		},
		DataDir: s.configStore.GetString(keyDataDir),
	}

	if _, ok := s.configStore.Get(keyServerOrigins); ok {
		settings.Server.AllowedOrigins = s.configStore.GetStringSlice(keyServerOrigins)
	}
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings, nil
}

// Save persists application settings.
// Empty API keys are not written so a key supplied by the environment stays out of the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyEmbedDims, settings.Embedding.Dimensions, settings.Embedding.Dimensions == 0},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyVectorBackend, string(settings.VectorIndex.Backend), false},
		{keyVectorURL, settings.VectorIndex.URL, false},
		{keyVectorAPIKey, settings.VectorIndex.APIKey, settings.VectorIndex.APIKey == ""},
		{keyVectorColl, settings.VectorIndex.Collection, false},
		{keyVectorTimeout, settings.VectorIndex.Timeout.String(), false},
		{keyRetrievalLimit, settings.Retrieval.Limit, false},
		{keyRetrievalThresh, settings.Retrieval.ScoreThreshold, false},
		{keyRateRequests, settings.RateLimit.Requests, false},
		{keyRateWindow, settings.RateLimit.Window.String(), false},
		{keyServerAddr, settings.Server.Addr, false},
		{keyServerOrigins, settings.Server.AllowedOrigins, false},
		{keyDataDir, settings.DataDir, settings.DataDir == ""},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = providerBaseURL(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	// A known model fixes the vector size; an override only applies to unknown models.
	if _, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = 0
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support completions", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = providerBaseURL(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorBackend selects the vector index adapter.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", backend)
	}
	return s.configStore.Set(keyVectorBackend, string(backend))
}

// Validate checks the settings are usable.
// Missing AI providers are not an error: answers degrade to the apology path.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Embedding.Provider == domain.AIProviderAnthropic {
		return fmt.Errorf("provider %s does not support embeddings", settings.Embedding.Provider)
	}
	if settings.LLM.Provider == domain.AIProviderHashed {
		return fmt.Errorf("provider %s does not support completions", settings.LLM.Provider)
	}
	if settings.Embedding.IsConfigured() && domain.DimensionsFor(settings.Embedding) == 0 {
		return fmt.Errorf("unknown dimensions for embedding model %q, set %s", settings.Embedding.Model, keyEmbedDims)
	}
	if settings.VectorIndex.Backend == domain.VectorBackendQdrant && settings.VectorIndex.URL == "" {
		return fmt.Errorf("vector backend qdrant requires %s", keyVectorURL)
	}
	if settings.Retrieval.Limit <= 0 {
		return fmt.Errorf("%s must be positive", keyRetrievalLimit)
	}
	if settings.Retrieval.ScoreThreshold < 0 || settings.Retrieval.ScoreThreshold > 1 {
		return fmt.Errorf("%s must be between 0 and 1", keyRetrievalThresh)
	}
	if settings.RateLimit.Requests <= 0 || settings.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit requires positive requests and window")
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// providerBaseURL keeps a custom endpoint for OpenAI-compatible proxies,
// fills in the local default for Ollama and clears it for Anthropic.
func providerBaseURL(provider domain.AIProvider, current string) string {
	switch provider {
	case domain.AIProviderOllama:
		if current == "" {
			return defaultOllamaURL
		}
		return current
	case domain.AIProviderOpenAI:
		return current
	default:
		return ""
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getDuration accepts a duration string ("45s") or a whole number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if str := s.configStore.GetString(key); str != "" {
		d, err := time.ParseDuration(str)
		if err != nil || d <= 0 {
			return defaultVal
		}
		return d
	}
	if secs := s.configStore.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key, apiKeyKey string) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		if s.configStore.GetString(apiKeyKey) != "" {
			return domain.AIProviderOpenAI
		}
		return ""
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return ""
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
