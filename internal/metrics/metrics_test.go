package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

func TestRecorder(t *testing.T) {
	m := New(false)

	m.QueryAnswered(domain.ContextFullBook, driven.OutcomeAnswered)
	m.QueryAnswered(domain.ContextFullBook, driven.OutcomeAnswered)
	m.QueryAnswered(domain.ContextSelection, driven.OutcomeNoContext)
	m.Degraded("retrieval")
	m.ChunksIngested(12)
	m.ChunksIngested(0)
	m.ObserveStage(driven.StageRetrieve, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("full_book", "answered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("selection", "no_context")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DegradationsTotal.WithLabelValues("retrieval")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.ChunksTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := New(false)

	m.RecordHTTPRequest("/query", http.StatusOK, 10*time.Millisecond)
	m.RecordHTTPRequest("/query", http.StatusTooManyRequests, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/query", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/query", "429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal.WithLabelValues("/query")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New(true)
	m.Degraded("generation")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `bookrag_degradations_total{reason="generation"} 1`))
	assert.Contains(t, body, "go_goroutines")
}

func TestNew_IsolatedRegistries(t *testing.T) {
	a, b := New(false), New(false)
	a.Degraded("x")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.DegradationsTotal.WithLabelValues("x")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DegradationsTotal.WithLabelValues("x")))
}
