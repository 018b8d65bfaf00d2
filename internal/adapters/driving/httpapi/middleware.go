package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// unloggedPaths are served without a usage record.
var unloggedPaths = map[string]bool{
	"/metrics": true,
	"/health":  true,
	"/ready":   true,
	"/live":    true,
}

// statusRecorder captures the response code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// callInfo lets handlers attach usage details to the request's metric row.
type callInfo struct {
	sessionToken string
	requestData  string
	rateLimited  bool
}

type callInfoKey struct{}

func callInfoFrom(ctx context.Context) *callInfo {
	if info, ok := ctx.Value(callInfoKey{}).(*callInfo); ok {
		return info
	}
	return &callInfo{}
}

// instrument records every request in Prometheus and in the usage store.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &callInfo{}
		r = r.WithContext(context.WithValue(r.Context(), callInfoKey{}, info))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		if s.svc.Metrics != nil {
			s.svc.Metrics.HTTPRequestsInFlight.Inc()
			defer s.svc.Metrics.HTTPRequestsInFlight.Dec()
		}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if s.svc.Metrics != nil {
			s.svc.Metrics.RecordHTTPRequest(route, rec.status, elapsed)
		}
		if s.svc.Usage != nil && !unloggedPaths[r.URL.Path] {
			s.svc.Usage.LogAPICall(context.WithoutCancel(r.Context()), domain.APIMetric{
				ID:             uuid.NewString(),
				SessionToken:   info.sessionToken,
				Endpoint:       r.URL.Path,
				RequestData:    info.requestData,
				ResponseTimeMS: elapsed.Milliseconds(),
				StatusCode:     rec.status,
				RateLimited:    info.rateLimited,
				CreatedAt:      start.UTC(),
			})
		}
		s.log.Debug("%s %s %d %s", r.Method, r.URL.Path, rec.status, elapsed)
	})
}

// limited applies the per-client rate limit to a handler.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientKey(r)) {
			callInfoFrom(r.Context()).rateLimited = true
			writeServiceError(w, domain.ErrRateLimited)
			return
		}
		h(w, r)
	})
}

// cors allows configured browser origins and answers preflight requests.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (s.origins[origin] || s.origins["*"]) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", strings.Join([]string{
					http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions,
				}, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Session-Token")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
