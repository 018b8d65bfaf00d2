package driven

import "github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"

// Chunker splits document text into overlapping windows for embedding.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Chunk splits text. Empty or whitespace-only text yields no chunks.
	Chunk(text string, opts ChunkOptions) []domain.TextChunk
}

// ChunkOptions labels the chunks of one run and may override the window size.
type ChunkOptions struct {
	// SourceFile, Title and Section form the chunk id prefix.
	SourceFile string
	Title      string
	Section    string

	// TargetTokens overrides the configured window size when positive.
	TargetTokens int
}
