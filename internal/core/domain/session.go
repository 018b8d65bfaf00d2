package domain

import "time"

// SessionTTL is how long a user session stays valid without activity.
const SessionTTL = 24 * time.Hour

// SessionTokenPrefix prefixes generated session tokens.
const SessionTokenPrefix = "sess_"

// UserSession is an anonymous or authenticated chat session.
type UserSession struct {
	Token           string
	IsAuthenticated bool
	UserID          string
	CreatedAt       time.Time
	LastActivityAt  time.Time
	ExpiresAt       time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *UserSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// QuerySession records one answered question.
type QuerySession struct {
	ID              string
	SessionToken    string
	BookID          string
	Question        string
	ContextType     ContextType
	SelectedText    string
	RetrievedChunks []RetrievedChunk
	Answer          string
	Citations       []Citation
	ResponseTimeMS  int64
	CreatedAt       time.Time
}

// APIMetric records one served API request.
type APIMetric struct {
	ID             string
	SessionToken   string
	Endpoint       string
	RequestData    string
	ResponseTimeMS int64
	StatusCode     int
	RateLimited    bool
	CreatedAt      time.Time
}

// MetricsSummary aggregates API metrics for a session or an endpoint.
type MetricsSummary struct {
	TotalCalls          int     `json:"total_calls"`
	RateLimitedCalls    int     `json:"rate_limited_calls"`
	ErrorCalls          int     `json:"error_calls"`
	AverageResponseTime float64 `json:"average_response_time_ms"`
}
