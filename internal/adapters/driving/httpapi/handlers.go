package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

const (
	maxQueryBody  = 1 << 20
	maxIngestBody = 8 << 20

	sessionHeader = "X-Session-Token"
	sessionCookie = "session_token"

	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// errorBody is the shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// bookView is the JSON form of a book.
type bookView struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Author               string     `json:"author,omitempty"`
	WordCount            int        `json:"word_count"`
	TotalChunks          int        `json:"total_chunks"`
	Status               string     `json:"ingestion_status"`
	IngestionStartedAt   *time.Time `json:"ingestion_started_at,omitempty"`
	IngestionCompletedAt *time.Time `json:"ingestion_completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func newBookView(b domain.Book) bookView {
	return bookView{
		ID:                   b.ID,
		Title:                b.Title,
		Author:               b.Author,
		WordCount:            b.WordCount,
		TotalChunks:          b.TotalChunks,
		Status:               string(b.Status),
		IngestionStartedAt:   b.IngestionStartedAt,
		IngestionCompletedAt: b.IngestionCompletedAt,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}

type sessionView struct {
	SessionToken    string    `json:"session_token"`
	IsAuthenticated bool      `json:"is_authenticated"`
	UserID          string    `json:"user_id,omitempty"`
	ExpiresAt       time.Time `json:"expires_at"`
}

type historyEntry struct {
	ID             string            `json:"id"`
	Question       string            `json:"question"`
	Answer         string            `json:"answer"`
	ContextType    string            `json:"context_type"`
	Citations      []domain.Citation `json:"citations"`
	ResponseTimeMS int64             `json:"response_time_ms"`
	CreatedAt      time.Time         `json:"created_at"`
}

type createSessionRequest struct {
	Authenticated bool   `json:"is_authenticated"`
	UserID        string `json:"user_id"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryRequest
	if !decodeBody(w, r, maxQueryBody, &req) {
		return
	}
	if req.ContextType == "" {
		req.ContextType = domain.ContextFullBook
	}
	s.answer(w, r, req)
}

func (s *Server) handleSelectionQuery(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryRequest
	if !decodeBody(w, r, maxQueryBody, &req) {
		return
	}
	req.ContextType = domain.ContextSelection
	if n := utf8.RuneCountInString(req.SelectedText); n > domain.MaxSelectionLength {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf(
			"Selected text too long. Maximum %d characters allowed, got %d", domain.MaxSelectionLength, n))
		return
	}
	s.answer(w, r, req)
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, req domain.QueryRequest) {
	req.SessionToken = sessionToken(r, req.SessionToken)
	info := callInfoFrom(r.Context())
	info.sessionToken = req.SessionToken
	info.requestData = summariseQuery(req)

	if req.SessionToken == "" {
		writeError(w, http.StatusBadRequest, "Session token is required")
		return
	}
	if err := domain.ValidateSessionToken(req.SessionToken); err != nil {
		writeServiceError(w, err)
		return
	}
	if req.BookID == "" {
		req.BookID = domain.DefaultBookID
	}

	outcome, err := s.svc.Answer.Query(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.svc.Sessions == nil {
		writeError(w, http.StatusNotFound, "Sessions are not enabled")
		return
	}
	token := sessionToken(r, r.URL.Query().Get("session_token"))
	callInfoFrom(r.Context()).sessionToken = token
	if err := domain.ValidateSessionToken(token); err != nil {
		writeServiceError(w, err)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("limit must be an integer between 1 and %d", maxHistoryLimit))
			return
		}
		limit = n
	}

	sessions, err := s.svc.Sessions.History(r.Context(), token, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	entries := make([]historyEntry, 0, len(sessions))
	for _, qs := range sessions {
		entries = append(entries, historyEntry{
			ID:             qs.ID,
			Question:       qs.Question,
			Answer:         qs.Answer,
			ContextType:    string(qs.ContextType),
			Citations:      qs.Citations,
			ResponseTimeMS: qs.ResponseTimeMS,
			CreatedAt:      qs.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_token": token, "history": entries})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestRequest
	if !decodeBody(w, r, maxIngestBody, &req) {
		return
	}
	callInfoFrom(r.Context()).requestData = fmt.Sprintf("book_id=%s content_chars=%d",
		req.BookID, utf8.RuneCountInString(req.Content))

	if err := domain.ValidateIngestData(req); err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := s.svc.Ingestion.Ingest(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.svc.Ingestion.Books(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	views := make([]bookView, 0, len(books))
	for _, b := range books {
		views = append(views, newBookView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.svc.Ingestion.Book(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookView(*book))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if s.svc.Sessions == nil {
		writeError(w, http.StatusNotFound, "Sessions are not enabled")
		return
	}
	var req createSessionRequest
	if r.ContentLength != 0 && !decodeBody(w, r, maxQueryBody, &req) {
		return
	}
	session, err := s.svc.Sessions.Create(r.Context(), req.Authenticated, req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	callInfoFrom(r.Context()).sessionToken = session.Token
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, sessionView{
		SessionToken:    session.Token,
		IsAuthenticated: session.IsAuthenticated,
		UserID:          session.UserID,
		ExpiresAt:       session.ExpiresAt,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if s.svc.Sessions == nil {
		writeError(w, http.StatusNotFound, "Sessions are not enabled")
		return
	}
	token := r.PathValue("token")
	callInfoFrom(r.Context()).sessionToken = token
	if err := s.svc.Sessions.Delete(r.Context(), token); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.check(r.Context())
	code := http.StatusOK
	if report.Status == StatusUnavailable {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	report := s.health.ready(r.Context())
	code := http.StatusOK
	if report.Status != StatusReady {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, LivenessReport{
		Status:    StatusAlive,
		Timestamp: time.Now().UTC(),
		Process:   "running",
	})
}

// sessionToken picks the token from the body, then the header, then the cookie.
func sessionToken(r *http.Request, fromBody string) string {
	if t := strings.TrimSpace(fromBody); t != "" {
		return t
	}
	if t := strings.TrimSpace(r.Header.Get(sessionHeader)); t != "" {
		return t
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// summariseQuery is the request_data stored with a usage metric.
func summariseQuery(req domain.QueryRequest) string {
	return fmt.Sprintf("book_id=%s context_type=%s question_chars=%d selection_chars=%d",
		req.BookID, req.ContextType,
		utf8.RuneCountInString(req.Question), utf8.RuneCountInString(req.SelectedText))
}

// decodeBody reads a JSON body of at most limit bytes into v.
// It writes the error response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeServiceError maps domain errors onto status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		code := http.StatusBadRequest
		if strings.Contains(verr.Message, "too long") {
			code = http.StatusRequestEntityTooLarge
		}
		writeError(w, code, verr.Message)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "RATE_LIMIT_EXCEEDED"})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "Session expired")
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrIndexUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
