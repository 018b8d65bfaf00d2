package domain

import (
	"fmt"
	"time"
)

// TextChunk is a bounded slice of source text produced by the chunker.
// Text is source[StartOffset:EndOffset] with surrounding whitespace trimmed.
type TextChunk struct {
	// Text is the trimmed chunk content. Never empty.
	Text string

	// StartOffset is the byte offset where the window starts in the source.
	StartOffset int

	// EndOffset is the exclusive byte offset where the window ends.
	EndOffset int

	// ChunkID is "{source_file}:{title}:{section}:{index}", unique per chunking run.
	ChunkID string
}

// ContentRecord is the payload stored alongside one embedding vector.
// An upsert either creates or fully replaces the record keyed by ContentID.
type ContentRecord struct {
	// ContentID is the unique key, "{book_id}_chunk_{index}" for ingested books.
	ContentID string

	// BookID scopes the record to one book.
	BookID string

	// Title is the book title.
	Title string

	// Section names the part of the book the chunk came from.
	Section string

	// PageNumber is set when the source has pagination.
	PageNumber *int

	// ChunkIndex is the zero-based position of the chunk within its book.
	ChunkIndex int

	// Text is the chunk content.
	Text string

	// SourceFile identifies where the content was loaded from.
	SourceFile string

	// CreatedAt is when the record was produced.
	CreatedAt time.Time

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any
}

// ContentIDFor returns the deterministic content id for a chunk of a book.
func ContentIDFor(bookID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", bookID, index)
}

// SectionFor returns the section label assigned to a chunk during ingestion.
func SectionFor(index int) string {
	return fmt.Sprintf("chunk_%d", index)
}

// EmbeddingStatus tracks whether a content row has a stored vector.
type EmbeddingStatus string

// Embedding statuses.
const (
	EmbeddingStatusPending   EmbeddingStatus = "pending"
	EmbeddingStatusProcessed EmbeddingStatus = "processed"
	EmbeddingStatusFailed    EmbeddingStatus = "failed"
)

// ContentEmbedding is the relational mirror of a ContentRecord.
type ContentEmbedding struct {
	ContentID  string
	BookID     string
	ChunkText  string
	ChunkTitle string
	Section    string
	ChunkIndex int
	SourceFile string
	Status     EmbeddingStatus

	// VectorID is the content id the vector index stored the point under.
	VectorID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
