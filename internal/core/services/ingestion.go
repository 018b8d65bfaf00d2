package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// Embedding batch defaults.
const (
	DefaultEmbedBatchSize   = 32
	DefaultEmbedConcurrency = 4
)

// IngestionService chunks, embeds and indexes book content.
type IngestionService struct {
	chunker     driven.Chunker
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	books       driven.BookStore
	content     driven.ContentStore
	recorder    driven.Recorder
	batchSize   int
	concurrency int
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	books driven.BookStore,
) *IngestionService {
	return &IngestionService{
		chunker:     chunker,
		embedder:    embedder,
		index:       index,
		books:       books,
		recorder:    nopRecorder{},
		batchSize:   DefaultEmbedBatchSize,
		concurrency: DefaultEmbedConcurrency,
	}
}

// SetContentStore enables the relational mirror of indexed chunks.
func (s *IngestionService) SetContentStore(store driven.ContentStore) {
	s.content = store
}

// SetRecorder sets the telemetry recorder.
func (s *IngestionService) SetRecorder(r driven.Recorder) {
	if r != nil {
		s.recorder = r
	}
}

// SetBatching overrides the embedding batch size and the number of
// batches embedded at once.
func (s *IngestionService) SetBatching(size, concurrency int) {
	if size > 0 {
		s.batchSize = size
	}
	if concurrency > 0 {
		s.concurrency = concurrency
	}
}

// Ingest indexes a book, replacing whatever an earlier run stored for it.
func (s *IngestionService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	start := time.Now()
	logger.Section("Ingestion")

	if err := domain.ValidateIngestRequest(req); err != nil {
		return nil, err
	}
	req.BookID = strings.TrimSpace(req.BookID)
	req.Title = strings.TrimSpace(req.Title)
	if req.ChunkSize == 0 {
		req.ChunkSize = domain.DefaultChunkSize
	}

	log := logger.With("ingestion").With("book_id", req.BookID)

	book, err := s.beginBook(ctx, req, start)
	if err != nil {
		return nil, err
	}

	ids, err := s.indexContent(ctx, req, log)
	if err != nil {
		log.Error("Ingestion failed: %v", err)
		_ = s.finishBook(context.WithoutCancel(ctx), book, domain.IngestionFailed, 0, log)
		return nil, err
	}

	if err := s.finishBook(ctx, book, domain.IngestionCompleted, len(ids), log); err != nil {
		return nil, err
	}
	s.recorder.ChunksIngested(len(ids))

	result := &domain.IngestResult{
		Status:           "success",
		Message:          fmt.Sprintf("Book '%s' content ingested successfully", req.Title),
		TotalChunks:      len(ids),
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		ContentIDs:       ids,
	}
	log.Info("Ingested %d chunks in %dms", result.TotalChunks, result.ProcessingTimeMS)
	return result, nil
}

// Book returns stored metadata for a book.
func (s *IngestionService) Book(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.books.GetBook(ctx, bookID)
}

// Books lists all ingested books.
func (s *IngestionService) Books(ctx context.Context) ([]domain.Book, error) {
	return s.books.ListBooks(ctx)
}

// beginBook upserts the book with status in_progress.
func (s *IngestionService) beginBook(
	ctx context.Context, req domain.IngestRequest, now time.Time,
) (*domain.Book, error) {
	book := &domain.Book{
		ID:                 req.BookID,
		Title:              req.Title,
		Author:             strings.TrimSpace(req.Author),
		WordCount:          len(strings.Fields(req.Content)),
		Status:             domain.IngestionInProgress,
		IngestionStartedAt: &now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	existing, err := s.books.GetBook(ctx, req.BookID)
	switch {
	case err == nil:
		book.CreatedAt = existing.CreatedAt
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("%w: load book: %w", domain.ErrStorage, err)
	}

	if err := s.books.SaveBook(ctx, *book); err != nil {
		return nil, fmt.Errorf("%w: save book: %w", domain.ErrStorage, err)
	}
	return book, nil
}

// finishBook records the terminal status of a run.
func (s *IngestionService) finishBook(
	ctx context.Context, book *domain.Book, status domain.IngestionStatus, chunks int, log *logger.Component,
) error {
	now := time.Now()
	book.Status = status
	book.UpdatedAt = now
	if status == domain.IngestionCompleted {
		book.TotalChunks = chunks
		book.IngestionCompletedAt = &now
	}

	if err := s.books.SaveBook(ctx, *book); err != nil {
		log.Error("Failed to mark book %s: %v", status, err)
		return fmt.Errorf("%w: save book: %w", domain.ErrStorage, err)
	}
	return nil
}

// indexContent chunks, embeds and stores the content, returning the content ids.
func (s *IngestionService) indexContent(
	ctx context.Context, req domain.IngestRequest, log *logger.Component,
) ([]string, error) {
	chunks := s.chunker.Chunk(req.Content, driven.ChunkOptions{
		SourceFile:   req.BookID,
		Title:        req.Title,
		TargetTokens: req.ChunkSize,
	})
	log.Debug("Split into %d chunks with %s", len(chunks), s.chunker.Name())

	now := time.Now()
	records := make([]domain.ContentRecord, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		records = append(records, domain.ContentRecord{
			ContentID:  domain.ContentIDFor(req.BookID, i),
			BookID:     req.BookID,
			Title:      req.Title,
			Section:    domain.SectionFor(i),
			ChunkIndex: i,
			Text:       c.Text,
			SourceFile: req.BookID,
			CreatedAt:  now,
			Metadata: map[string]any{
				"author":       req.Author,
				"chunk_id":     c.ChunkID,
				"start_offset": c.StartOffset,
				"end_offset":   c.EndOffset,
			},
		})
		texts = append(texts, c.Text)
	}

	contentIDs := make([]string, 0, len(records))
	for _, r := range records {
		contentIDs = append(contentIDs, r.ContentID)
	}

	var vectorIDs []string
	if len(records) > 0 {
		vectors, err := s.embed(ctx, texts)
		if err != nil {
			return nil, err
		}

		upsertStart := time.Now()
		if err := s.index.EnsureCollection(ctx, len(vectors[0]), driven.DistanceCosine); err != nil {
			return nil, fmt.Errorf("ensure collection: %w", err)
		}
		vectorIDs, err = s.index.Upsert(ctx, records, vectors)
		if err != nil {
			return nil, fmt.Errorf("upsert vectors: %w", err)
		}
		if len(vectorIDs) != len(records) {
			return nil, fmt.Errorf("%w: upsert returned %d ids for %d records",
				domain.ErrIndexUnavailable, len(vectorIDs), len(records))
		}
		s.recorder.ObserveStage(driven.StageUpsert, time.Since(upsertStart))
	}

	if err := s.index.DeleteStale(ctx, req.BookID, len(records)); err != nil {
		return nil, fmt.Errorf("prune stale vectors: %w", err)
	}

	if s.content != nil {
		rows := make([]domain.ContentEmbedding, 0, len(records))
		for i, r := range records {
			rows = append(rows, domain.ContentEmbedding{
				ContentID:  r.ContentID,
				BookID:     r.BookID,
				ChunkText:  r.Text,
				ChunkTitle: r.Title,
				Section:    r.Section,
				ChunkIndex: r.ChunkIndex,
				SourceFile: r.SourceFile,
				Status:     domain.EmbeddingStatusProcessed,
				VectorID:   vectorIDs[i],
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}
		if err := s.content.ReplaceContent(ctx, req.BookID, rows); err != nil {
			return nil, fmt.Errorf("%w: store content: %w", domain.ErrStorage, err)
		}
	}

	return contentIDs, nil
}

// embed embeds texts in bounded parallel batches, preserving order.
func (s *IngestionService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for from := 0; from < len(texts); from += s.batchSize {
		to := min(from+s.batchSize, len(texts))
		g.Go(func() error {
			batch, err := s.embedder.EmbedBatch(gctx, texts[from:to])
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", from, to-1, err)
			}
			if len(batch) != to-from {
				return fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbeddingUnavailable, len(batch), to-from)
			}
			copy(vectors[from:to], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.recorder.ObserveStage(driven.StageEmbed, time.Since(start))
	return vectors, nil
}
