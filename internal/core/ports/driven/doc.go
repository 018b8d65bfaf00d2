// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Turns text into vectors (OpenAI, Ollama, hash stub in tests)
//   - VectorIndex: Stores vectors with payload and runs filtered similarity search
//   - Chunker: Splits book text into overlapping windows
//   - BookStore, ContentStore: Book metadata persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Completion backend. Without it every answer is a fixed fallback.
//   - QuerySessionStore, SessionStore, MetricStore: Best-effort history and usage records.
//   - PromptStore: User-editable prompts. Without it embedded defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
