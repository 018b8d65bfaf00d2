package domain

import "time"

// IngestionStatus is the lifecycle state of a book's ingestion.
type IngestionStatus string

// Ingestion statuses.
const (
	IngestionPending    IngestionStatus = "pending"
	IngestionInProgress IngestionStatus = "in_progress"
	IngestionCompleted  IngestionStatus = "completed"
	IngestionFailed     IngestionStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s IngestionStatus) IsValid() bool {
	switch s {
	case IngestionPending, IngestionInProgress, IngestionCompleted, IngestionFailed:
		return true
	default:
		return false
	}
}

// Book holds the metadata of an ingested book.
type Book struct {
	// ID is the caller-chosen book identifier.
	ID string

	// Title is the book title.
	Title string

	// Author is optional.
	Author string

	// WordCount is the whitespace-delimited word count of the content.
	WordCount int

	// TotalChunks is the number of content records stored for the book.
	TotalChunks int

	// Status is the ingestion lifecycle state.
	Status IngestionStatus

	// IngestionStartedAt is set when an ingestion run begins.
	IngestionStartedAt *time.Time

	// IngestionCompletedAt is set when an ingestion run succeeds.
	IngestionCompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultChunkSize is the target chunk size in tokens used by ingestion.
const DefaultChunkSize = 512

// IngestRequest is the input to the ingestion pipeline.
type IngestRequest struct {
	BookID  string `json:"book_id" yaml:"book_id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Author  string `json:"author,omitempty" yaml:"author,omitempty"`

	// ChunkSize is the target chunk size in tokens. Zero means DefaultChunkSize.
	ChunkSize int `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
}

// IngestResult reports a completed ingestion.
type IngestResult struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	TotalChunks      int    `json:"total_chunks"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`

	// ContentIDs lists the ids upserted, in chunk order.
	ContentIDs []string `json:"content_ids,omitempty"`
}
