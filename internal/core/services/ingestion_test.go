package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/storage/memory"
	vecmemory "github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/vectorindex/memory"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/postprocessors/chunker"
)

const threeSentences = "Sentence one. Sentence two. Sentence three."

type ingestionFixture struct {
	svc      *IngestionService
	embedder *letterEmbedder
	index    *vecmemory.Index
	books    *memory.BookStore
	content  *memory.ContentStore
	recorder *spyRecorder
}

func newIngestionFixture() *ingestionFixture {
	f := &ingestionFixture{
		embedder: &letterEmbedder{},
		index:    vecmemory.New(),
		books:    memory.NewBookStore(),
		content:  memory.NewContentStore(),
		recorder: &spyRecorder{},
	}
	f.svc = NewIngestionService(chunker.New(chunker.WithOverlapTokens(2)), f.embedder, f.index, f.books)
	f.svc.SetContentStore(f.content)
	f.svc.SetRecorder(f.recorder)
	return f
}

func TestIngestionService_TwoChunks(t *testing.T) {
	f := newIngestionFixture()
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, domain.IngestRequest{
		BookID:    " sea ",
		Title:     "Sea Stories",
		Author:    "A. Sailor",
		Content:   threeSentences,
		ChunkSize: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "Book 'Sea Stories' content ingested successfully", result.Message)
	assert.Equal(t, 2, result.TotalChunks)
	assert.Equal(t, []string{"sea_chunk_0", "sea_chunk_1"}, result.ContentIDs)
	assert.Equal(t, 2, f.index.Len())
	assert.Equal(t, 2, f.recorder.ingested)

	book, err := f.svc.Book(ctx, "sea")
	require.NoError(t, err)
	assert.Equal(t, domain.IngestionCompleted, book.Status)
	assert.Equal(t, 2, book.TotalChunks)
	assert.Equal(t, 6, book.WordCount)
	assert.Equal(t, "A. Sailor", book.Author)
	require.NotNil(t, book.IngestionStartedAt)
	require.NotNil(t, book.IngestionCompletedAt)

	rows, err := f.content.ListContent(ctx, "sea")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sentence one. Sentence two.", rows[0].ChunkText)
	assert.Equal(t, "chunk_0", rows[0].Section)
	assert.Equal(t, "sea_chunk_0", rows[0].VectorID)
	assert.Equal(t, domain.EmbeddingStatusProcessed, rows[1].Status)

	matches, err := f.index.Search(ctx, letterVector("Sentence three."), domain.VectorFilter{BookID: "sea"}, 1, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "sea_chunk_1", matches[0].Source.ContentID)
	assert.Equal(t, "A. Sailor", matches[0].Metadata["author"])
}

func TestIngestionService_ReingestReplaces(t *testing.T) {
	f := newIngestionFixture()
	ctx := context.Background()

	req := domain.IngestRequest{BookID: "sea", Title: "Sea Stories", Content: threeSentences, ChunkSize: 8}
	_, err := f.svc.Ingest(ctx, req)
	require.NoError(t, err)
	first, err := f.books.GetBook(ctx, "sea")
	require.NoError(t, err)

	again, err := f.svc.Ingest(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, again.TotalChunks)
	assert.Equal(t, 2, f.index.Len())

	req.Content = "A single short passage."
	req.ChunkSize = 0
	shorter, err := f.svc.Ingest(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, shorter.TotalChunks)
	assert.Equal(t, 1, f.index.Len(), "stale chunks from the longer run are removed")

	rows, err := f.content.ListContent(ctx, "sea")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A single short passage.", rows[0].ChunkText)

	book, err := f.books.GetBook(ctx, "sea")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, book.CreatedAt)
	assert.Equal(t, 1, book.TotalChunks)
}

func TestIngestionService_OtherBooksUntouched(t *testing.T) {
	f := newIngestionFixture()
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, domain.IngestRequest{BookID: "sea", Title: "Sea", Content: threeSentences, ChunkSize: 8})
	require.NoError(t, err)
	_, err = f.svc.Ingest(ctx, domain.IngestRequest{BookID: "land", Title: "Land", Content: "Only one chunk here."})
	require.NoError(t, err)

	assert.Equal(t, 3, f.index.Len())

	books, err := f.svc.Books(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "land", books[0].ID)
}

func TestIngestionService_Validation(t *testing.T) {
	f := newIngestionFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.IngestRequest
	}{
		{"missing book id", domain.IngestRequest{Title: "T", Content: "content"}},
		{"missing title", domain.IngestRequest{BookID: "b1", Content: "content"}},
		{"missing content", domain.IngestRequest{BookID: "b1", Title: "T"}},
		{"negative chunk size", domain.IngestRequest{BookID: "b1", Title: "T", Content: "content", ChunkSize: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Ingest(ctx, tt.req)
			assert.True(t, domain.IsValidation(err))
		})
	}

	books, err := f.svc.Books(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestIngestionService_EmbedFailureMarksFailed(t *testing.T) {
	f := newIngestionFixture()
	f.embedder.embedErr = domain.ErrEmbeddingUnavailable
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, domain.IngestRequest{BookID: "sea", Title: "Sea", Content: threeSentences})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	book, err := f.books.GetBook(ctx, "sea")
	require.NoError(t, err)
	assert.Equal(t, domain.IngestionFailed, book.Status)
	assert.Nil(t, book.IngestionCompletedAt)
	assert.Equal(t, 0, f.index.Len())
}

func TestIngestionService_ShortEmbeddingBatch(t *testing.T) {
	f := newIngestionFixture()
	f.embedder.short = true

	_, err := f.svc.Ingest(context.Background(), domain.IngestRequest{BookID: "sea", Title: "Sea", Content: threeSentences})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIngestionService_IndexFailures(t *testing.T) {
	ctx := context.Background()
	req := domain.IngestRequest{BookID: "sea", Title: "Sea", Content: threeSentences}

	tests := []struct {
		name  string
		index *stubIndex
	}{
		{"ensure", &stubIndex{ensureErr: domain.ErrIndexUnavailable}},
		{"upsert", &stubIndex{upsertErr: domain.ErrIndexUnavailable}},
		{"prune", &stubIndex{deleteErr: domain.ErrIndexUnavailable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books := memory.NewBookStore()
			svc := NewIngestionService(chunker.New(), &letterEmbedder{}, tt.index, books)

			_, err := svc.Ingest(ctx, req)
			assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

			book, err := books.GetBook(ctx, "sea")
			require.NoError(t, err)
			assert.Equal(t, domain.IngestionFailed, book.Status)
		})
	}
}

func TestIngestionService_Batching(t *testing.T) {
	index := &stubIndex{}
	embedder := &letterEmbedder{}
	svc := NewIngestionService(chunker.New(), embedder, index, memory.NewBookStore())
	svc.SetBatching(1, 2)

	content := strings.Repeat("Waves rolled in. ", 40)
	result, err := svc.Ingest(context.Background(), domain.IngestRequest{
		BookID: "sea", Title: "Sea", Content: content, ChunkSize: 16,
	})
	require.NoError(t, err)
	require.Greater(t, result.TotalChunks, 1)

	assert.Equal(t, result.TotalChunks, embedder.batchCalls())
	require.Len(t, index.upserted, result.TotalChunks)
	for i, r := range index.upserted {
		assert.Equal(t, i, r.ChunkIndex)
		assert.Equal(t, domain.ContentIDFor("sea", i), r.ContentID)
	}
	assert.Equal(t, []int{result.TotalChunks}, index.deleted)
}

func TestIngestionService_VectorIDsFromIndex(t *testing.T) {
	index := &stubIndex{}
	content := memory.NewContentStore()
	svc := NewIngestionService(chunker.New(), &letterEmbedder{}, index, memory.NewBookStore())
	svc.SetContentStore(content)

	_, err := svc.Ingest(context.Background(), domain.IngestRequest{BookID: "sea", Title: "Sea", Content: threeSentences})
	require.NoError(t, err)

	rows, err := content.ListContent(context.Background(), "sea")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sea_chunk_0", rows[0].ContentID)
	assert.Equal(t, "vec-sea_chunk_0", rows[0].VectorID)
}

func TestIngestionService_WhitespaceContent(t *testing.T) {
	index := &stubIndex{}
	svc := NewIngestionService(chunker.New(), &letterEmbedder{}, index, memory.NewBookStore())

	result, err := svc.Ingest(context.Background(), domain.IngestRequest{BookID: "sea", Title: "Sea", Content: "   \n  "})
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalChunks)
	assert.Empty(t, index.upserted)
	assert.Equal(t, []int{0}, index.deleted)
}
