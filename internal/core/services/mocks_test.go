package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// --- Mock implementations ---

var errBackend = errors.New("backend down")

// letterEmbedder implements driven.EmbeddingService with letter frequency
// vectors, so similar texts score close to each other.
type letterEmbedder struct {
	mu       sync.Mutex
	embedErr error
	calls    int
	short    bool
}

func letterVector(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

func (m *letterEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return letterVector(text), nil
}

func (m *letterEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, letterVector(t))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *letterEmbedder) batchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *letterEmbedder) Dimensions() int              { return 26 }
func (m *letterEmbedder) ModelName() string            { return "letters" }
func (m *letterEmbedder) Ping(_ context.Context) error { return nil }
func (m *letterEmbedder) Close() error                 { return nil }

// stubIndex implements driven.VectorIndex with canned matches.
type stubIndex struct {
	mu         sync.Mutex
	matches    []domain.RetrievalMatch
	nilResult  bool
	searchErr  error
	ensureErr  error
	upsertErr  error
	deleteErr  error
	filters    []domain.VectorFilter
	limits     []int
	thresholds []float64
	upserted   []domain.ContentRecord
	deleted    []int
}

func (m *stubIndex) EnsureCollection(_ context.Context, _ int, _ driven.Distance) error {
	return m.ensureErr
}

func (m *stubIndex) Upsert(_ context.Context, records []domain.ContentRecord, _ [][]float32) ([]string, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, records...)
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = "vec-" + r.ContentID
	}
	return ids, nil
}

func (m *stubIndex) Search(
	_ context.Context, _ []float32, filter domain.VectorFilter, limit int, threshold float64,
) ([]domain.RetrievalMatch, error) {
	m.mu.Lock()
	m.filters = append(m.filters, filter)
	m.limits = append(m.limits, limit)
	m.thresholds = append(m.thresholds, threshold)
	m.mu.Unlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.nilResult {
		return nil, nil
	}

	out := []domain.RetrievalMatch{}
	for _, match := range m.matches {
		if filter.TextContains != "" && !strings.Contains(match.Text, filter.TextContains) {
			continue
		}
		out = append(out, match)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *stubIndex) DeleteStale(_ context.Context, _ string, keep int) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, keep)
	m.mu.Unlock()
	return m.deleteErr
}

func (m *stubIndex) Ping(_ context.Context) error { return nil }
func (m *stubIndex) Close() error                 { return nil }

// stubLLM implements driven.LLMService, replying with a fixed text.
type stubLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []driven.CompletionRequest
}

func (m *stubLLM) Complete(_ context.Context, req driven.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *stubLLM) calls() []driven.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.CompletionRequest(nil), m.requests...)
}

func (m *stubLLM) ModelName() string            { return "stub" }
func (m *stubLLM) Ping(_ context.Context) error { return nil }
func (m *stubLLM) Close() error                 { return nil }

// stubPrompts implements driven.PromptStore from a map.
type stubPrompts map[string]string

func (p stubPrompts) Load(name string) (string, error) {
	if s, ok := p[name]; ok {
		return s, nil
	}
	return "", domain.ErrNotFound
}

func (p stubPrompts) Reload() {}

// stubRetriever implements driving.RetrievalService with a fixed result.
type stubRetriever struct {
	result   domain.Result[[]domain.RetrievalMatch]
	requests []domain.RetrievalRequest
}

func (m *stubRetriever) Retrieve(
	_ context.Context, req domain.RetrievalRequest,
) domain.Result[[]domain.RetrievalMatch] {
	m.requests = append(m.requests, req)
	return m.result
}

// spyRecorder implements driven.Recorder, keeping what it was told.
type spyRecorder struct {
	mu       sync.Mutex
	stages   []string
	outcomes []string
	degraded []string
	ingested int
}

func (r *spyRecorder) ObserveStage(stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *spyRecorder) QueryAnswered(ct domain.ContextType, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, string(ct)+"/"+outcome)
}

func (r *spyRecorder) Degraded(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.degraded = append(r.degraded, reason)
}

func (r *spyRecorder) ChunksIngested(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingested += n
}

// failingQueryStore implements driven.QuerySessionStore and always fails.
type failingQueryStore struct{}

func (failingQueryStore) SaveQuerySession(context.Context, *domain.QuerySession) error {
	return errBackend
}

func (failingQueryStore) ListQuerySessions(context.Context, string, int) ([]domain.QuerySession, error) {
	return nil, errBackend
}

// matchesFixture returns n matches with descending scores.
func matchesFixture(n int) []domain.RetrievalMatch {
	out := make([]domain.RetrievalMatch, 0, n)
	for i := range n {
		out = append(out, domain.RetrievalMatch{
			Text:  "Passage " + string(rune('A'+i)) + " about the sea.",
			Score: 0.9 - float64(i)*0.1,
			Source: domain.SourceRef{
				ContentID:  domain.ContentIDFor("book", i),
				Title:      "Sea Stories",
				Section:    domain.SectionFor(i),
				ChunkIndex: i,
			},
		})
	}
	return out
}
