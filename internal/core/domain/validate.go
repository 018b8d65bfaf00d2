package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Ingestion bounds.
const (
	MinBookIDLength       = 3
	MaxBookIDLength       = 100
	MaxTitleLength        = 500
	MaxAuthorLength       = 250
	MinContentLength      = 10
	MaxContentLength      = 1_000_000
	MinSessionTokenLength = 10
	MaxSessionTokenLength = 255
)

var (
	bookIDPattern       = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	sessionTokenPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// runeLen counts characters rather than bytes.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateQuery checks a retrieval query.
func ValidateQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return NewValidationError("query", "Query cannot be empty")
	}
	if runeLen(trimmed) < MinQueryLength {
		return NewValidationError("query", "Query must be at least %d characters long", MinQueryLength)
	}
	return nil
}

// ValidateSelection checks user-selected text. The limit applies to the
// untrimmed selection, emptiness to the trimmed one.
func ValidateSelection(selected string) error {
	if strings.TrimSpace(selected) == "" {
		return NewValidationError("selected_text",
			"Selected text cannot be empty when context type is '%s'", ContextSelection)
	}
	if n := runeLen(selected); n > MaxSelectionLength {
		return NewValidationError("selected_text",
			"Selected text too long. Maximum %d characters allowed, got %d", MaxSelectionLength, n)
	}
	return nil
}

// ValidateQuestion checks the inputs of an answer request.
func ValidateQuestion(question string, contextType ContextType, selected string) error {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return NewValidationError("question", "Question cannot be empty")
	}
	n := runeLen(trimmed)
	if n < MinQuestionLength {
		return NewValidationError("question", "Question must be at least %d characters long", MinQuestionLength)
	}
	if n > MaxQuestionLength {
		return NewValidationError("question", "Question must be no more than %d characters long", MaxQuestionLength)
	}
	if !contextType.IsValid() {
		return NewValidationError("context_type",
			"Context type must be either '%s' or '%s'", ContextFullBook, ContextSelection)
	}
	if contextType == ContextSelection {
		return ValidateSelection(selected)
	}
	return nil
}

// ValidateBookID checks a book identifier.
func ValidateBookID(bookID string) error {
	trimmed := strings.TrimSpace(bookID)
	switch {
	case trimmed == "":
		return NewValidationError("book_id", "Book ID cannot be empty")
	case len(trimmed) < MinBookIDLength:
		return NewValidationError("book_id", "Book ID must be at least %d characters long", MinBookIDLength)
	case len(trimmed) > MaxBookIDLength:
		return NewValidationError("book_id", "Book ID must be no more than %d characters long", MaxBookIDLength)
	case !bookIDPattern.MatchString(trimmed):
		return NewValidationError("book_id", "Book ID can only contain letters, numbers, hyphens, and underscores")
	}
	return nil
}

// ValidateSessionToken checks the format of a session token.
func ValidateSessionToken(token string) error {
	trimmed := strings.TrimSpace(token)
	switch {
	case trimmed == "":
		return NewValidationError("session_token", "Session token cannot be empty")
	case len(trimmed) < MinSessionTokenLength:
		return NewValidationError("session_token",
			"Session token must be at least %d characters long", MinSessionTokenLength)
	case len(trimmed) > MaxSessionTokenLength:
		return NewValidationError("session_token",
			"Session token must be no more than %d characters long", MaxSessionTokenLength)
	case !sessionTokenPattern.MatchString(trimmed):
		return NewValidationError("session_token", "Session token contains invalid characters")
	}
	return nil
}

// ValidateIngestRequest checks only the required fields.
func ValidateIngestRequest(req IngestRequest) error {
	if strings.TrimSpace(req.BookID) == "" {
		return NewValidationError("book_id", "Missing required field: book_id")
	}
	if strings.TrimSpace(req.Title) == "" {
		return NewValidationError("title", "Missing required field: title")
	}
	if req.Content == "" {
		return NewValidationError("content", "Missing required field: content")
	}
	if req.ChunkSize < 0 {
		return NewValidationError("chunk_size", "Chunk size must be positive")
	}
	return nil
}

// ValidateIngestData applies the full set of bounds used at the transport boundary.
func ValidateIngestData(req IngestRequest) error {
	if err := ValidateIngestRequest(req); err != nil {
		return err
	}
	if err := ValidateBookID(req.BookID); err != nil {
		return err
	}
	if runeLen(strings.TrimSpace(req.Title)) > MaxTitleLength {
		return NewValidationError("title", "Title must be no more than %d characters long", MaxTitleLength)
	}
	n := runeLen(req.Content)
	if n < MinContentLength {
		return NewValidationError("content", "Content is too short to be meaningful")
	}
	if n > MaxContentLength {
		return NewValidationError("content", "Content is too large (maximum 1MB)")
	}
	if runeLen(strings.TrimSpace(req.Author)) > MaxAuthorLength {
		return NewValidationError("author", "Author name must be no more than %d characters long", MaxAuthorLength)
	}
	return nil
}
