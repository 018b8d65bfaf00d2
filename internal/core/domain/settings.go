package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI or any OpenAI-compatible API (e.g. OpenRouter).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHashed is the offline MD5 embedder. Embeddings only; its
	// vectors carry no meaning, so it suits tests and demos.
	AIProviderHashed AIProvider = "hashed"
)

// HashedEmbeddingModel is the model name reported by the hashed embedder.
const HashedEmbeddingModel = "hashed-md5"

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderHashed:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHashed:
		return "Hashed (offline, testing only)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's known vector size when non-zero.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashed {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorBackend selects the vector index adapter.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendQdrant talks to a Qdrant server over REST.
	VectorBackendQdrant VectorBackend = "qdrant"

	// VectorBackendSQLite stores vectors in the local metadata database.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendMemory keeps vectors in process memory only.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendQdrant, VectorBackendSQLite, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendQdrant:
		return "Qdrant (server)"
	case VectorBackendSQLite:
		return "SQLite (local file)"
	case VectorBackendMemory:
		return "In-memory (lost on exit)"
	default:
		return unknownDescription
	}
}

// AllVectorBackends returns the selectable vector backends.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendSQLite,
		VectorBackendQdrant,
		VectorBackendMemory,
	}
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the adapter.
	Backend VectorBackend

	// URL is the Qdrant endpoint.
	URL string

	// APIKey is sent as the Qdrant api-key header when set.
	APIKey string

	// Collection is the Qdrant collection name.
	Collection string

	// Timeout bounds each index call.
	Timeout time.Duration
}

// RetrievalSettings tunes similarity search.
type RetrievalSettings struct {
	// Limit is the default number of matches per query.
	Limit int

	// ScoreThreshold drops matches below this similarity.
	ScoreThreshold float64
}

// RateLimitSettings bounds requests per client on the HTTP surface.
type RateLimitSettings struct {
	// Requests is the number of requests allowed per Window.
	Requests int

	// Window is the refill period.
	Window time.Duration
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string

	// AllowedOrigins lists CORS origins. Empty allows none.
	AllowedOrigins []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorIndex VectorIndexSettings
	Retrieval   RetrievalSettings
	RateLimit   RateLimitSettings
	Server      ServerSettings

	// DataDir holds the sqlite database and prompt files.
	DataDir string
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured until an API key or local endpoint is set.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		VectorIndex: VectorIndexSettings{
			Backend:    VectorBackendSQLite,
			URL:        "http://localhost:6333",
			Collection: "book_content_chunks",
			Timeout:    10 * time.Second,
		},
		Retrieval: RetrievalSettings{
			Limit:          DefaultRetrieveLimit,
			ScoreThreshold: 0,
		},
		RateLimit: RateLimitSettings{
			Requests: 10,
			Window:   60 * time.Second,
		},
		Server: ServerSettings{
			Addr: ":8000",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:8080",
			},
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderHashed,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderHashed: HashedEmbeddingModel,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Offline stub, sized like text-embedding-3-small
		HashedEmbeddingModel: 1536,
	}
}

// DimensionsFor resolves the vector size for an embedding configuration.
// Returns 0 when the model is unknown and no override is set.
func DimensionsFor(e EmbeddingSettings) int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	return EmbeddingDimensions()[e.Model]
}
