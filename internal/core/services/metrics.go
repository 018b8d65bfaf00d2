package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
)

// Ensure MetricsService implements the interface.
var _ driving.MetricsService = (*MetricsService)(nil)

// MetricsService records and summarises API usage.
type MetricsService struct {
	store driven.MetricStore
	now   func() time.Time
}

// NewMetricsService creates a new metrics service.
func NewMetricsService(store driven.MetricStore) *MetricsService {
	return &MetricsService{
		store: store,
		now:   time.Now,
	}
}

// LogAPICall records one served request. Storage failures are only logged.
func (s *MetricsService) LogAPICall(ctx context.Context, metric domain.APIMetric) {
	if metric.ID == "" {
		metric.ID = uuid.NewString()
	}
	if metric.CreatedAt.IsZero() {
		metric.CreatedAt = s.now()
	}

	if err := s.store.SaveMetric(ctx, &metric); err != nil {
		logger.Warn("Failed to record API call to %s: %v", metric.Endpoint, err)
	}
}

// SessionMetrics summarises a session's calls within the window.
// A zero window covers all recorded calls.
func (s *MetricsService) SessionMetrics(
	ctx context.Context, sessionToken string, window time.Duration,
) (domain.MetricsSummary, error) {
	summary, err := s.store.SummariseSession(ctx, sessionToken, s.since(window))
	if err != nil {
		return domain.MetricsSummary{}, fmt.Errorf("%w: summarise session: %w", domain.ErrStorage, err)
	}
	return summary, nil
}

// EndpointMetrics summarises an endpoint's calls within the window.
// A zero window covers all recorded calls.
func (s *MetricsService) EndpointMetrics(
	ctx context.Context, endpoint string, window time.Duration,
) (domain.MetricsSummary, error) {
	summary, err := s.store.SummariseEndpoint(ctx, endpoint, s.since(window))
	if err != nil {
		return domain.MetricsSummary{}, fmt.Errorf("%w: summarise endpoint: %w", domain.ErrStorage, err)
	}
	return summary, nil
}

// RateLimitedCount returns how many of a session's calls were rate limited.
func (s *MetricsService) RateLimitedCount(ctx context.Context, sessionToken string) (int, error) {
	summary, err := s.SessionMetrics(ctx, sessionToken, 0)
	if err != nil {
		return 0, err
	}
	return summary.RateLimitedCalls, nil
}

// AverageResponseTime returns an endpoint's mean response time in milliseconds.
func (s *MetricsService) AverageResponseTime(ctx context.Context, endpoint string) (float64, error) {
	summary, err := s.EndpointMetrics(ctx, endpoint, 0)
	if err != nil {
		return 0, err
	}
	return summary.AverageResponseTime, nil
}

// CleanupOld removes metrics older than the given number of days.
func (s *MetricsService) CleanupOld(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		return 0, domain.NewValidationError("days", "Days must be positive")
	}
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	n, err := s.store.DeleteMetricsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup metrics: %w", domain.ErrStorage, err)
	}
	return n, nil
}

func (s *MetricsService) since(window time.Duration) time.Time {
	if window <= 0 {
		return time.Time{}
	}
	return s.now().Add(-window)
}
