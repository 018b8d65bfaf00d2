package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultSearchTimeout bounds a single vector index search.
const DefaultSearchTimeout = 10 * time.Second

// selectionCandidateFactor widens the book-wide search used to find stored
// passages that sit inside a selection.
const selectionCandidateFactor = 4

// RetrievalService embeds queries and runs filtered similarity search.
type RetrievalService struct {
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	recorder  driven.Recorder
	threshold float64
	timeout   time.Duration
	limit     int
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(embedder driven.EmbeddingService, index driven.VectorIndex) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		recorder: nopRecorder{},
		timeout:  DefaultSearchTimeout,
		limit:    domain.DefaultRetrieveLimit,
	}
}

// SetDefaultLimit sets the number of matches returned when a request gives none.
func (s *RetrievalService) SetDefaultLimit(limit int) {
	if limit > 0 {
		s.limit = limit
	}
}

// SetScoreThreshold drops matches scoring below threshold.
func (s *RetrievalService) SetScoreThreshold(threshold float64) {
	s.threshold = threshold
}

// SetSearchTimeout overrides the per-search timeout.
func (s *RetrievalService) SetSearchTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// SetRecorder sets the telemetry recorder.
func (s *RetrievalService) SetRecorder(r driven.Recorder) {
	if r != nil {
		s.recorder = r
	}
}

// Retrieve returns the passages of a book most similar to the query.
func (s *RetrievalService) Retrieve(
	ctx context.Context, req domain.RetrievalRequest,
) domain.Result[[]domain.RetrievalMatch] {
	logger.Section("Retrieval")

	query := strings.TrimSpace(req.Query)
	if err := domain.ValidateQuery(query); err != nil {
		return domain.Err[[]domain.RetrievalMatch](err)
	}

	mode := req.Mode
	if mode == "" {
		mode = domain.ContextFullBook
	}
	if !mode.IsValid() {
		return domain.Err[[]domain.RetrievalMatch](domain.NewValidationError("context_type",
			"Context type must be either '%s' or '%s'", domain.ContextFullBook, domain.ContextSelection))
	}
	if mode == domain.ContextSelection {
		if err := domain.ValidateSelection(req.SelectedText); err != nil {
			return domain.Err[[]domain.RetrievalMatch](err)
		}
	}

	bookID := req.BookID
	if bookID == "" {
		bookID = domain.DefaultBookID
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.limit
	}

	start := time.Now()
	defer func() { s.recorder.ObserveStage(driven.StageRetrieve, time.Since(start)) }()

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return domain.Err[[]domain.RetrievalMatch](fmt.Errorf("%w: embed query: %w", domain.ErrRetrieval, err))
	}

	logger.Debug("Book: %s, mode: %s, limit: %d, threshold: %.2f", bookID, mode, limit, s.threshold)

	if mode == domain.ContextFullBook {
		matches, err := s.search(ctx, vector, domain.VectorFilter{BookID: bookID}, limit)
		if err != nil {
			return domain.Err[[]domain.RetrievalMatch](err)
		}
		logger.Debug("Retrieved %d matches", len(matches))
		return domain.Ok(matches)
	}

	matches, err := s.retrieveSelection(ctx, vector, bookID, req.SelectedText, limit)
	if err != nil {
		return domain.Err[[]domain.RetrievalMatch](err)
	}
	logger.Debug("Retrieved %d selection matches", len(matches))
	return domain.Ok(matches)
}

// retrieveSelection keeps passages related to the selection either way:
// the stored text lies inside the selection, or it contains the
// selection's leading characters.
func (s *RetrievalService) retrieveSelection(
	ctx context.Context, vector []float32, bookID, selected string, limit int,
) ([]domain.RetrievalMatch, error) {
	prefix := selectionPrefix(selected)

	byPrefix, err := s.search(ctx, vector, domain.VectorFilter{BookID: bookID, TextContains: prefix}, limit)
	if err != nil {
		return nil, err
	}

	wide, err := s.search(ctx, vector, domain.VectorFilter{BookID: bookID}, limit*selectionCandidateFactor)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(byPrefix)+len(wide))
	merged := make([]domain.RetrievalMatch, 0, limit)
	for _, m := range append(byPrefix, wide...) {
		if !selectionContains(selected, prefix, m.Text) {
			continue
		}
		key := matchKey(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, m)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// search runs one bounded index query.
func (s *RetrievalService) search(
	ctx context.Context, vector []float32, filter domain.VectorFilter, limit int,
) ([]domain.RetrievalMatch, error) {
	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matches, err := s.index.Search(searchCtx, vector, filter, limit, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	if matches == nil {
		matches = []domain.RetrievalMatch{}
	}
	return matches, nil
}

// selectionPrefix returns the first characters of the selection used as the
// index-side containment filter.
func selectionPrefix(selected string) string {
	runes := []rune(selected)
	if len(runes) > domain.SelectionPrefixChars {
		runes = runes[:domain.SelectionPrefixChars]
	}
	return string(runes)
}

func selectionContains(selected, prefix, text string) bool {
	if text == "" {
		return false
	}
	return strings.Contains(selected, text) || strings.Contains(text, prefix)
}

func matchKey(m domain.RetrievalMatch) string {
	if m.Source.ContentID != "" {
		return m.Source.ContentID
	}
	return m.Text
}
