package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/embedding/hashed"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	result := &InitResult{}
	// Should not panic
	result.Close()
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		errContains string
	}{
		{name: "nil settings returns nil", wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{
			name:     "ollama provider creates service",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"},
		},
		{
			name:     "openai provider creates service",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "text-embedding-3-small"},
		},
		{
			name:     "openai without key is not configured",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
		{
			name:        "anthropic provider returns error",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantNil:     true,
			errContains: "anthropic does not support embeddings",
		},
		{
			name:     "hashed provider creates the offline stub",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderHashed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestCreateEmbeddingService_Dimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, Model: "nomic-embed-text",
	})
	require.NoError(t, err)
	assert.Equal(t, 768, svc.Dimensions())

	svc, err = CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "text-embedding-3-small", Dimensions: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 256, svc.Dimensions())
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
		model    string
	}{
		{name: "nil settings", wantNil: true},
		{name: "unconfigured", settings: &domain.LLMSettings{}, wantNil: true},
		{name: "ollama", settings: &domain.LLMSettings{Provider: domain.AIProviderOllama}, model: "llama3.2"},
		{name: "openai", settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o"}, model: "gpt-4o"},
		{name: "anthropic", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, model: "claude-3-5-sonnet-latest"},
		{name: "anthropic without key", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic}, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.model, svc.ModelName())
		})
	}
}

func TestCreateAndValidate_Reachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	embed, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, BaseURL: srv.URL, Model: "all-minilm",
	})
	require.NoError(t, err)
	require.NotNil(t, embed)
	assert.Equal(t, 384, embed.Dimensions())

	llm, err := CreateAndValidateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL})
	require.NoError(t, err)
	assert.NotNil(t, llm)

	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}))
}

func TestCreateAndValidate_Unreachable(t *testing.T) {
	embed, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1",
	})
	assert.Nil(t, embed)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	llm, err := CreateAndValidateLLMService(&domain.LLMSettings{
		Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1",
	})
	assert.Nil(t, llm)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	assert.Error(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1",
	}))
}

func TestInit_UnreachableEmbeddingIsNotReplaced(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1", Model: "all-minilm"}
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1"}

	result := Init(&settings)
	defer result.Close()

	assert.Len(t, result.Warnings, 2)
	assert.Nil(t, result.LLMService)
	assert.ErrorIs(t, result.EmbeddingErr, domain.ErrEmbeddingUnavailable)

	require.NotNil(t, result.EmbeddingService)
	assert.NotEqual(t, hashed.ModelName, result.EmbeddingService.ModelName())
	assert.Equal(t, 384, result.EmbeddingService.Dimensions())

	_, err := result.EmbeddingService.Embed(context.Background(), "the sea")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	_, err = result.EmbeddingService.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, result.EmbeddingService.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
}

func TestInit_Unconfigured(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{}
	result := Init(&settings)
	defer result.Close()

	assert.ErrorIs(t, result.EmbeddingErr, domain.ErrEmbeddingUnavailable)
	_, err := result.EmbeddingService.Embed(context.Background(), "the sea")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestInit_HashedProviderIsExplicit(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderHashed, Model: domain.HashedEmbeddingModel}

	result := Init(&settings)
	defer result.Close()

	require.NoError(t, result.EmbeddingErr)
	require.IsType(t, &hashed.EmbeddingService{}, result.EmbeddingService)
	assert.Equal(t, 1536, result.EmbeddingService.Dimensions())

	vec, err := result.EmbeddingService.Embed(context.Background(), "the sea")
	require.NoError(t, err)
	assert.Len(t, vec, 1536)
}
