package driving

import (
	"context"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// MetricsService records and summarises API usage.
type MetricsService interface {
	// LogAPICall records one served request. Failures are logged, not returned.
	LogAPICall(ctx context.Context, metric domain.APIMetric)

	// SessionMetrics summarises a session's calls within the window.
	SessionMetrics(ctx context.Context, sessionToken string, window time.Duration) (domain.MetricsSummary, error)

	// EndpointMetrics summarises an endpoint's calls within the window.
	EndpointMetrics(ctx context.Context, endpoint string, window time.Duration) (domain.MetricsSummary, error)

	// RateLimitedCount returns how many of a session's calls were rate limited.
	RateLimitedCount(ctx context.Context, sessionToken string) (int, error)

	// AverageResponseTime returns an endpoint's mean response time in milliseconds.
	AverageResponseTime(ctx context.Context, endpoint string) (float64, error)

	// CleanupOld removes metrics older than the given number of days.
	CleanupOld(ctx context.Context, days int) (int, error)
}
