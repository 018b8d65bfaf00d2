// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"
	"time"
)

// LLMService is the completion backend used to compose answers.
// The core depends only on "text in, text out"; provider response shapes
// stay inside the adapters.
//
// Implementations may include:
//   - OpenAI and OpenAI-compatible gateways (OpenRouter)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Complete sends a system and user prompt and returns the generated text.
	// A non-zero Timeout bounds the call on top of ctx.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest configures a single completion.
type CompletionRequest struct {
	// SystemPrompt sets the assistant's behaviour.
	SystemPrompt string

	// UserPrompt carries the question and any context.
	UserPrompt string

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Timeout bounds the call. Zero leaves only the ctx deadline.
	Timeout time.Duration

	// JSON asks the backend for a JSON object response when supported.
	JSON bool
}
