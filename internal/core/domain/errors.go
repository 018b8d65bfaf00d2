package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates caller input was rejected before any external call.
	// Use ValidationError to carry the field and message.
	ErrValidation = errors.New("validation failed")

	// ErrRetrieval indicates the retriever could not reach or query the vector index.
	// The answer pipeline recovers from it by answering without context.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrIndexUnavailable indicates the vector index backend is unreachable or errored.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGeneration indicates the completion backend failed, errored or timed out.
	// The answer pipeline recovers from it with a fixed apology.
	ErrGeneration = errors.New("generation failed")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStorage indicates persistence of books, sessions or metrics failed.
	ErrStorage = errors.New("storage failed")

	// ErrSessionExpired indicates a user session exists but is past its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrRateLimited indicates the caller exceeded the configured request rate.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ValidationError describes rejected caller input.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	// Field names the offending input, e.g. "question" or "selected_text".
	Field string

	// Message is the caller-facing explanation.
	Message string
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Error returns the caller-facing message.
func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
