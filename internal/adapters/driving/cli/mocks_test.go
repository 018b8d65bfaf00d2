package cli

import (
	"context"
	"sync"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	normreg "github.com/Muhammadasif1986/ai-diven-book/internal/normalisers"
)

// mockAnswerService records the last request and returns a fixed outcome.
type mockAnswerService struct {
	mu      sync.Mutex
	lastReq domain.QueryRequest
	outcome *domain.QueryOutcome
	err     error
}

func (m *mockAnswerService) Query(_ context.Context, req domain.QueryRequest) (*domain.QueryOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	if m.outcome != nil {
		return m.outcome, nil
	}
	page := 12
	return &domain.QueryOutcome{
		Answer: "Actuators convert energy into motion.",
		Citations: []domain.Citation{
			{Title: "Actuators", Section: "Chapter 3", PageNumber: &page, RelevanceScore: 0.87, TextPreview: "Actuators..."},
		},
		ContextType: req.ContextType,
	}, nil
}

func (m *mockAnswerService) HasContext(context.Context, domain.QueryRequest) bool { return true }

// mockIngestionService records ingest requests and serves a fixed book list.
type mockIngestionService struct {
	mu       sync.Mutex
	requests []domain.IngestRequest
	books    []domain.Book
	err      error
	ingested chan string
}

func (m *mockIngestionService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.ingested != nil {
		m.ingested <- req.BookID
	}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{
		Status:           "success",
		Message:          "Successfully ingested book " + req.BookID,
		TotalChunks:      3,
		ProcessingTimeMS: 42,
	}, nil
}

func (m *mockIngestionService) Book(_ context.Context, id string) (*domain.Book, error) {
	for i := range m.books {
		if m.books[i].ID == id {
			return &m.books[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockIngestionService) Books(context.Context) ([]domain.Book, error) {
	return m.books, m.err
}

func (m *mockIngestionService) Requests() []domain.IngestRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.IngestRequest(nil), m.requests...)
}

// mockSessionService keeps sessions in a map.
type mockSessionService struct {
	sessions map[string]*domain.UserSession
	history  []domain.QuerySession
	cleaned  int
}

func newMockSessionService() *mockSessionService {
	return &mockSessionService{sessions: make(map[string]*domain.UserSession)}
}

func (m *mockSessionService) Create(_ context.Context, authenticated bool, userID string) (*domain.UserSession, error) {
	now := time.Now()
	s := &domain.UserSession{
		Token:           "sess_cli0123456789",
		IsAuthenticated: authenticated,
		UserID:          userID,
		CreatedAt:       now,
		LastActivityAt:  now,
		ExpiresAt:       now.Add(domain.SessionTTL),
	}
	m.sessions[s.Token] = s
	return s, nil
}

func (m *mockSessionService) Get(_ context.Context, token string) (*domain.UserSession, error) {
	s, ok := m.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockSessionService) Validate(_ context.Context, token string) bool {
	_, ok := m.sessions[token]
	return ok
}

func (m *mockSessionService) Extend(ctx context.Context, token string) (*domain.UserSession, error) {
	s, err := m.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	s.ExpiresAt = s.ExpiresAt.Add(domain.SessionTTL)
	return s, nil
}

func (m *mockSessionService) Delete(_ context.Context, token string) error {
	if _, ok := m.sessions[token]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sessions, token)
	return nil
}

func (m *mockSessionService) CleanupExpired(context.Context) (int, error) {
	m.cleaned++
	return 2, nil
}

func (m *mockSessionService) History(_ context.Context, _ string, limit int) ([]domain.QuerySession, error) {
	if limit > 0 && len(m.history) > limit {
		return m.history[:limit], nil
	}
	return m.history, nil
}

// mockUsageService returns a fixed summary and records cleanups.
type mockUsageService struct {
	summary     domain.MetricsSummary
	cleanedDays int
	lastKey     string
}

func (m *mockUsageService) LogAPICall(context.Context, domain.APIMetric) {}

func (m *mockUsageService) SessionMetrics(
	_ context.Context, token string, _ time.Duration,
) (domain.MetricsSummary, error) {
	m.lastKey = token
	return m.summary, nil
}

func (m *mockUsageService) EndpointMetrics(
	_ context.Context, endpoint string, _ time.Duration,
) (domain.MetricsSummary, error) {
	m.lastKey = endpoint
	return m.summary, nil
}

func (m *mockUsageService) RateLimitedCount(context.Context, string) (int, error) {
	return m.summary.RateLimitedCalls, nil
}

func (m *mockUsageService) AverageResponseTime(context.Context, string) (float64, error) {
	return m.summary.AverageResponseTime, nil
}

func (m *mockUsageService) CleanupOld(_ context.Context, days int) (int, error) {
	m.cleanedDays = days
	return 5, nil
}

// mockSettingsService stores settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	embedErr    error
	llmErr      error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetVectorBackend(b domain.VectorBackend) error {
	m.settings.VectorIndex.Backend = b
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return m.embedErr }
func (m *mockSettingsService) ValidateLLMConfig() error        { return m.llmErr }

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	answer    *mockAnswerService
	ingestion *mockIngestionService
	sessions  *mockSessionService
	usage     *mockUsageService
	settings  *mockSettingsService
}

// setupTestServices installs fresh mocks and returns a cleanup that
// removes them and restores every flag to its default.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		answer:    &mockAnswerService{},
		ingestion: &mockIngestionService{},
		sessions:  newMockSessionService(),
		usage:     &mockUsageService{},
		settings:  newMockSettingsService(),
	}
	SetServices(&Services{
		Answer:      ts.answer,
		Ingestion:   ts.ingestion,
		Sessions:    ts.sessions,
		Usage:       ts.usage,
		Settings:    ts.settings,
		Normalisers: normreg.NewDefaultRegistry(),
	})
	return ts, func() {
		SetServices(nil)
		resetFlags()
	}
}

func resetFlags() {
	ingestBookID, ingestTitle, ingestAuthor, ingestManifest = "", "", "", ""
	ingestChunkSize = 0
	ingestWatch, ingestJSON = false, false

	askBookID, askSelection, askSelectionFile, askSession = domain.DefaultBookID, "", "", ""
	askLimit = 0
	askJSON = false

	booksJSON = false
	sessionUserID = ""
	sessionHistoryLimit = 10

	statsSession, statsEndpoint = "", ""
	statsWindow = 24 * time.Hour
	statsJSON = false
	statsCleanup = 0

	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
}
