package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// Ensure MetricStore implements the interface.
var _ driven.MetricStore = (*MetricStore)(nil)

// MetricStore is an in-memory implementation of driven.MetricStore.
type MetricStore struct {
	mu      sync.RWMutex
	metrics []domain.APIMetric
}

// NewMetricStore creates a new in-memory metric store.
func NewMetricStore() *MetricStore {
	return &MetricStore{}
}

// SaveMetric stores one served request.
func (s *MetricStore) SaveMetric(_ context.Context, metric *domain.APIMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, *metric)
	return nil
}

// SummariseSession aggregates a session's calls made at or after since.
func (s *MetricStore) SummariseSession(
	_ context.Context, sessionToken string, since time.Time,
) (domain.MetricsSummary, error) {
	return s.summarise(func(m domain.APIMetric) bool {
		return m.SessionToken == sessionToken && !m.CreatedAt.Before(since)
	}), nil
}

// SummariseEndpoint aggregates an endpoint's calls made at or after since.
func (s *MetricStore) SummariseEndpoint(
	_ context.Context, endpoint string, since time.Time,
) (domain.MetricsSummary, error) {
	return s.summarise(func(m domain.APIMetric) bool {
		return m.Endpoint == endpoint && !m.CreatedAt.Before(since)
	}), nil
}

// DeleteMetricsBefore removes metrics older than the cutoff.
func (s *MetricStore) DeleteMetricsBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.metrics[:0]
	for _, m := range s.metrics {
		if !m.CreatedAt.Before(cutoff) {
			kept = append(kept, m)
		}
	}
	removed := len(s.metrics) - len(kept)
	s.metrics = kept
	return removed, nil
}

func (s *MetricStore) summarise(match func(domain.APIMetric) bool) domain.MetricsSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summary domain.MetricsSummary
	var total int64
	for _, m := range s.metrics {
		if !match(m) {
			continue
		}
		summary.TotalCalls++
		total += m.ResponseTimeMS
		if m.RateLimited {
			summary.RateLimitedCalls++
		}
		if m.StatusCode >= 400 {
			summary.ErrorCalls++
		}
	}
	if summary.TotalCalls > 0 {
		summary.AverageResponseTime = float64(total) / float64(summary.TotalCalls)
	}
	return summary
}
