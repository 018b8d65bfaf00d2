package domain

import "time"

// ContextType scopes retrieval to the whole book or to a user selection.
type ContextType string

// Context types.
const (
	// ContextFullBook searches every chunk of the book.
	ContextFullBook ContextType = "full_book"

	// ContextSelection restricts candidates to content within the user's selection.
	ContextSelection ContextType = "selection"
)

// IsValid returns true if the context type is recognised.
func (c ContextType) IsValid() bool {
	return c == ContextFullBook || c == ContextSelection
}

// String returns the string representation.
func (c ContextType) String() string {
	return string(c)
}

// Query limits shared by the retriever and the answer pipeline.
const (
	MinQueryLength       = 3
	MinQuestionLength    = 5
	MaxQuestionLength    = 2000
	MaxSelectionLength   = 5000
	SelectionPrefixChars = 100
	DefaultRetrieveLimit = 5
	DefaultBookID        = "default-book"
)

// SourceRef points back to the stored content a match came from.
type SourceRef struct {
	ContentID  string    `json:"content_id"`
	Title      string    `json:"title"`
	Section    string    `json:"section"`
	PageNumber *int      `json:"page_number,omitempty"`
	ChunkIndex int       `json:"chunk_index"`
	SourceFile string    `json:"source_file"`
	CreatedAt  time.Time `json:"created_at"`
}

// RetrievalMatch is one similarity hit, ordered by descending Score.
type RetrievalMatch struct {
	// Text is the stored chunk content.
	Text string `json:"text"`

	// Score is the cosine similarity; higher is closer.
	Score float64 `json:"score"`

	// Source identifies the stored record.
	Source SourceRef `json:"source"`

	// Metadata is copied from the stored record.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// VectorFilter restricts a similarity search.
type VectorFilter struct {
	// BookID limits candidates to one book. Required.
	BookID string

	// TextContains, when set, keeps only records whose text contains it.
	TextContains string
}

// RetrievalRequest is the input to the retriever.
type RetrievalRequest struct {
	Query        string
	BookID       string
	Mode         ContextType
	SelectedText string

	// Limit caps the number of matches. Zero means DefaultRetrieveLimit.
	Limit int
}

// Citation is a human-readable pointer to a retrieved passage.
type Citation struct {
	Title          string  `json:"title"`
	Section        string  `json:"section"`
	PageNumber     *int    `json:"page_number,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
	TextPreview    string  `json:"text_preview"`
}

// RetrievedChunk is the outcome's view of a match.
type RetrievedChunk struct {
	Content string    `json:"content"`
	Score   float64   `json:"score"`
	Source  SourceRef `json:"source"`
}

// QueryRequest is the input to the answer pipeline.
type QueryRequest struct {
	Question     string      `json:"question"`
	BookID       string      `json:"book_id,omitempty"`
	SessionToken string      `json:"session_token"`
	ContextType  ContextType `json:"context_type,omitempty"`
	SelectedText string      `json:"selected_text,omitempty"`
	MaxResults   int         `json:"max_results,omitempty"`
}

// OutcomeErrorUnavailable marks an outcome produced after an unexpected internal fault.
const OutcomeErrorUnavailable = "SERVICE_TEMPORARILY_UNAVAILABLE"

// QueryOutcome is the structured answer returned for every validated query.
type QueryOutcome struct {
	Answer          string           `json:"answer"`
	Citations       []Citation       `json:"citations"`
	RetrievedChunks []RetrievedChunk `json:"retrieved_chunks"`
	ResponseTimeMS  int64            `json:"response_time_ms"`
	ContextType     ContextType      `json:"context_type"`
	Error           string           `json:"error,omitempty"`
}

// AnswerEvaluation is the completion backend's verdict on an answer.
type AnswerEvaluation struct {
	IsGrounded        bool    `json:"is_grounded"`
	HasHallucinations bool    `json:"has_hallucinations"`
	AddressesQuestion bool    `json:"addresses_question"`
	ConfidenceScore   float64 `json:"confidence_score"`
}

// DefaultAnswerEvaluation is used when the verdict cannot be obtained.
func DefaultAnswerEvaluation() AnswerEvaluation {
	return AnswerEvaluation{
		IsGrounded:        true,
		HasHallucinations: false,
		AddressesQuestion: true,
		ConfidenceScore:   0.8,
	}
}
