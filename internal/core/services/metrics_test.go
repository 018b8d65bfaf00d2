package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/storage/memory"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

func newMetricsFixture() (*MetricsService, *memory.MetricStore, *fakeClock) {
	store := memory.NewMetricStore()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewMetricsService(store)
	svc.now = clock.Now
	return svc, store, clock
}

func TestMetricsService_LogAndSummarise(t *testing.T) {
	svc, _, clock := newMetricsFixture()
	ctx := context.Background()

	svc.LogAPICall(ctx, domain.APIMetric{SessionToken: "sess_a", Endpoint: "/query", ResponseTimeMS: 100, StatusCode: 200})
	svc.LogAPICall(ctx, domain.APIMetric{SessionToken: "sess_a", Endpoint: "/query", ResponseTimeMS: 300, StatusCode: 200})
	svc.LogAPICall(ctx, domain.APIMetric{
		SessionToken: "sess_a", Endpoint: "/query", ResponseTimeMS: 2, StatusCode: 429, RateLimited: true,
	})
	svc.LogAPICall(ctx, domain.APIMetric{SessionToken: "sess_b", Endpoint: "/ingest", ResponseTimeMS: 50, StatusCode: 500})

	summary, err := svc.SessionMetrics(ctx, "sess_a", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalCalls)
	assert.Equal(t, 1, summary.RateLimitedCalls)
	assert.Equal(t, 1, summary.ErrorCalls)
	assert.InDelta(t, 134.0, summary.AverageResponseTime, 1e-9)

	endpoint, err := svc.EndpointMetrics(ctx, "/ingest", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, endpoint.TotalCalls)
	assert.Equal(t, 1, endpoint.ErrorCalls)

	limited, err := svc.RateLimitedCount(ctx, "sess_a")
	require.NoError(t, err)
	assert.Equal(t, 1, limited)

	avg, err := svc.AverageResponseTime(ctx, "/ingest")
	require.NoError(t, err)
	assert.InDelta(t, 50.0, avg, 1e-9)

	clock.Advance(2 * time.Hour)
	summary, err = svc.SessionMetrics(ctx, "sess_a", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalCalls)
	assert.Zero(t, summary.AverageResponseTime)
}

func TestMetricsService_CleanupOld(t *testing.T) {
	svc, _, clock := newMetricsFixture()
	ctx := context.Background()

	svc.LogAPICall(ctx, domain.APIMetric{Endpoint: "/query", StatusCode: 200})
	clock.Advance(40 * 24 * time.Hour)
	svc.LogAPICall(ctx, domain.APIMetric{Endpoint: "/query", StatusCode: 200})

	n, err := svc.CleanupOld(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	summary, err := svc.EndpointMetrics(ctx, "/query", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalCalls)

	_, err = svc.CleanupOld(ctx, 0)
	assert.True(t, domain.IsValidation(err))
}

func TestMetricsService_KeepsCallerFields(t *testing.T) {
	svc, store, _ := newMetricsFixture()
	ctx := context.Background()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.LogAPICall(ctx, domain.APIMetric{ID: "fixed", Endpoint: "/health", CreatedAt: at})

	summary, err := store.SummariseEndpoint(ctx, "/health", at)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalCalls)

	summary, err = store.SummariseEndpoint(ctx, "/health", at.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalCalls)
}
