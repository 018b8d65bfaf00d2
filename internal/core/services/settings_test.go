package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/storage/memory"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.VectorIndex, settings.VectorIndex)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.RateLimit, settings.RateLimit)
	assert.Equal(t, defaults.Server, settings.Server)
	assert.False(t, settings.LLM.IsConfigured())
	assert.False(t, settings.Embedding.IsConfigured())
}

func TestSettingsService_Get_ReadsAllFields(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.provider", "anthropic")
	_ = store.Set("llm.model", "claude-3-5-haiku-latest")
	_ = store.Set("llm.api_key", "ak")
	_ = store.Set("embedding.provider", "ollama")
	_ = store.Set("embedding.model", "nomic-embed-text")
	_ = store.Set("embedding.base_url", "http://gpu:11434")
	_ = store.Set("embedding.dimensions", 768)
	_ = store.Set("vector.backend", "qdrant")
	_ = store.Set("vector.url", "http://qdrant:6333")
	_ = store.Set("vector.api_key", "qk")
	_ = store.Set("vector.collection", "chapters")
	_ = store.Set("vector.timeout", "3s")
	_ = store.Set("retrieval.limit", 8)
	_ = store.Set("retrieval.score_threshold", 0.3)
	_ = store.Set("rate_limit.requests", 20)
	_ = store.Set("rate_limit.window", int64(30))
	_ = store.Set("server.addr", ":9000")
	_ = store.Set("server.allowed_origins", []string{"https://book.example"})
	_ = store.Set("data_dir", "/var/lib/bookrag")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.LLMSettings{
		Provider: domain.AIProviderAnthropic, Model: "claude-3-5-haiku-latest", APIKey: "ak",
	}, settings.LLM)
	assert.Equal(t, domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, Model: "nomic-embed-text", BaseURL: "http://gpu:11434", Dimensions: 768,
	}, settings.Embedding)
	assert.Equal(t, domain.VectorIndexSettings{
		Backend: domain.VectorBackendQdrant, URL: "http://qdrant:6333", APIKey: "qk",
		Collection: "chapters", Timeout: 3 * time.Second,
	}, settings.VectorIndex)
	assert.Equal(t, domain.RetrievalSettings{Limit: 8, ScoreThreshold: 0.3}, settings.Retrieval)
	assert.Equal(t, domain.RateLimitSettings{Requests: 20, Window: 30 * time.Second}, settings.RateLimit)
	assert.Equal(t, ":9000", settings.Server.Addr)
	assert.Equal(t, []string{"https://book.example"}, settings.Server.AllowedOrigins)
	assert.Equal(t, "/var/lib/bookrag", settings.DataDir)
}

func TestSettingsService_Get_APIKeyImpliesOpenAI(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.api_key", "sk-test")
	_ = store.Set("embedding.api_key", "sk-test")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.True(t, settings.LLM.IsConfigured())
	assert.True(t, settings.Embedding.IsConfigured())
}

func TestSettingsService_Get_InvalidValuesFallBack(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.provider", "bogus")
	_ = store.Set("vector.backend", "pinecone")
	_ = store.Set("vector.timeout", "soon")
	_ = store.Set("rate_limit.window", "-5s")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, domain.AIProvider(""), settings.LLM.Provider)
	assert.Equal(t, defaults.VectorIndex.Backend, settings.VectorIndex.Backend)
	assert.Equal(t, defaults.VectorIndex.Timeout, settings.VectorIndex.Timeout)
	assert.Equal(t, defaults.RateLimit.Window, settings.RateLimit.Window)
}

func TestSettingsService_Get_EmptyOriginsList(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("server.allowed_origins", []string{})

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)
	assert.Empty(t, settings.Server.AllowedOrigins)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	in := domain.DefaultAppSettings()
	in.LLM = domain.LLMSettings{Provider: domain.AIProviderOpenAI, Model: "gpt-4o-mini", APIKey: "sk"}
	in.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "custom-embed", Dimensions: 512}
	in.VectorIndex.Backend = domain.VectorBackendMemory
	in.Retrieval.ScoreThreshold = 0.4
	in.RateLimit.Window = 90 * time.Second
	in.DataDir = "/data"

	require.NoError(t, service.Save(&in))

	out, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestSettingsService_Save_SkipsEmptySecrets(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	for _, key := range []string{"llm.api_key", "embedding.api_key", "vector.api_key", "embedding.dimensions", "data_dir"} {
		_, ok := store.Get(key)
		assert.False(t, ok, key)
	}
}

type failingConfigStore struct {
	*memory.ConfigStore
	failKey string
}

func (f *failingConfigStore) Set(key string, value any) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.ConfigStore.Set(key, value)
}

func TestSettingsService_Save_Errors(t *testing.T) {
	for _, key := range []string{"embedding.provider", "llm.model", "vector.backend", "rate_limit.window"} {
		t.Run(key, func(t *testing.T) {
			store := &failingConfigStore{ConfigStore: memory.NewConfigStore(), failKey: key}
			settings := domain.DefaultAppSettings()

			err := NewSettingsService(store, nil).Save(&settings)

			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name        string
		provider    domain.AIProvider
		model       string
		apiKey      string
		wantModel   string
		wantBaseURL string
		wantErr     string
	}{
		{name: "ollama default model", provider: domain.AIProviderOllama,
			wantModel: "all-minilm", wantBaseURL: "http://localhost:11434"},
		{name: "openai", provider: domain.AIProviderOpenAI, model: "text-embedding-3-large", apiKey: "sk",
			wantModel: "text-embedding-3-large"},
		{name: "openai needs key", provider: domain.AIProviderOpenAI, wantErr: "API key required"},
		{name: "anthropic", provider: domain.AIProviderAnthropic, apiKey: "ak", wantErr: "does not support embeddings"},
		{name: "hashed is explicit", provider: domain.AIProviderHashed, wantModel: domain.HashedEmbeddingModel},
		{name: "invalid", provider: "bogus", wantErr: "invalid embedding provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			err := service.SetEmbeddingProvider(tt.provider, tt.model, tt.apiKey)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.Embedding.Provider)
			assert.Equal(t, tt.wantModel, settings.Embedding.Model)
			assert.Equal(t, tt.wantBaseURL, settings.Embedding.BaseURL)
			assert.Equal(t, tt.apiKey, settings.Embedding.APIKey)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider_KnownModelClearsDimensions(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.dimensions", 512)
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "nomic-embed-text", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 768, domain.DimensionsFor(settings.Embedding))
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	tests := []struct {
		name        string
		provider    domain.AIProvider
		model       string
		apiKey      string
		baseURL     string
		wantModel   string
		wantBaseURL string
		wantErr     string
	}{
		{name: "ollama", provider: domain.AIProviderOllama,
			wantModel: "llama3.2", wantBaseURL: "http://localhost:11434"},
		{name: "ollama keeps url", provider: domain.AIProviderOllama, baseURL: "http://gpu:11434",
			wantModel: "llama3.2", wantBaseURL: "http://gpu:11434"},
		{name: "openai keeps proxy", provider: domain.AIProviderOpenAI, apiKey: "sk", baseURL: "https://openrouter.ai/api/v1",
			wantModel: "gpt-4o", wantBaseURL: "https://openrouter.ai/api/v1"},
		{name: "anthropic clears url", provider: domain.AIProviderAnthropic, model: "claude-3-opus", apiKey: "ak",
			baseURL: "http://old", wantModel: "claude-3-opus"},
		{name: "needs key", provider: domain.AIProviderAnthropic, wantErr: "API key required"},
		{name: "hashed has no completions", provider: domain.AIProviderHashed, wantErr: "does not support completions"},
		{name: "invalid", provider: "bogus", wantErr: "invalid LLM provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			if tt.baseURL != "" {
				_ = store.Set("llm.base_url", tt.baseURL)
			}
			service := NewSettingsService(store, nil)

			err := service.SetLLMProvider(tt.provider, tt.model, tt.apiKey)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.LLM.Provider)
			assert.Equal(t, tt.wantModel, settings.LLM.Model)
			assert.Equal(t, tt.wantBaseURL, settings.LLM.BaseURL)
		})
	}
}

func TestSettingsService_SetVectorBackend(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetVectorBackend(domain.VectorBackendQdrant))
	assert.Equal(t, "qdrant", store.GetString("vector.backend"))

	assert.Error(t, service.SetVectorBackend("faiss"))
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{name: "defaults"},
		{name: "configured openai", values: map[string]any{"llm.api_key": "sk", "embedding.api_key": "sk"}},
		{name: "anthropic embeddings", values: map[string]any{"embedding.provider": "anthropic"},
			wantErr: "does not support embeddings"},
		{name: "hashed embeddings", values: map[string]any{"embedding.provider": "hashed"}},
		{name: "hashed llm", values: map[string]any{"llm.provider": "hashed"},
			wantErr: "does not support completions"},
		{name: "unknown dimensions", values: map[string]any{"embedding.provider": "ollama", "embedding.model": "mystery"},
			wantErr: "unknown dimensions"},
		{name: "unknown model with override", values: map[string]any{
			"embedding.provider": "ollama", "embedding.model": "mystery", "embedding.dimensions": 256}},
		{name: "negative limit", values: map[string]any{"retrieval.limit": -1}, wantErr: "retrieval.limit"},
		{name: "threshold above one", values: map[string]any{"retrieval.score_threshold": 1.5},
			wantErr: "retrieval.score_threshold"},
		{name: "negative requests", values: map[string]any{"rate_limit.requests": -3}, wantErr: "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range tt.values {
				_ = store.Set(k, v)
			}

			err := NewSettingsService(store, nil).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

type mockAIConfigValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIConfigValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockAIConfigValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	t.Run("nil validator", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.NoError(t, service.ValidateEmbeddingConfig())
		assert.NoError(t, service.ValidateLLMConfig())
	})

	t.Run("passes current settings", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("llm.provider", "ollama")
		validator := &mockAIConfigValidator{}
		service := NewSettingsService(store, validator)

		require.NoError(t, service.ValidateLLMConfig())
		require.NoError(t, service.ValidateEmbeddingConfig())
		assert.Equal(t, domain.AIProviderOllama, validator.llm.Provider)
		assert.NotNil(t, validator.embedding)
	})

	t.Run("errors propagate", func(t *testing.T) {
		validator := &mockAIConfigValidator{
			embeddingErr: domain.ErrEmbeddingUnavailable,
			llmErr:       domain.ErrLLMUnavailable,
		}
		service := NewSettingsService(memory.NewConfigStore(), validator)

		assert.ErrorIs(t, service.ValidateEmbeddingConfig(), domain.ErrEmbeddingUnavailable)
		assert.ErrorIs(t, service.ValidateLLMConfig(), domain.ErrLLMUnavailable)
	})
}
