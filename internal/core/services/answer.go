package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Fixed answers used when the completion backend cannot help.
const (
	// ApologyAnswer replaces a failed answer that had book context.
	ApologyAnswer = "I'm sorry, but I'm currently experiencing difficulties processing your request. " +
		"Please try again later."

	// NoContextAnswer replaces a failed answer that had no book context.
	NoContextAnswer = "I'm sorry, but I couldn't find relevant information in the book to answer your question."
)

// logPrefixRunes is how much of a question is written to logs.
const logPrefixRunes = 50

// AnswerService runs the retrieve-then-generate pipeline for one question.
type AnswerService struct {
	retriever driving.RetrievalService
	generator *AnswerGenerator
	citations *CitationBuilder
	queries   driven.QuerySessionStore
	recorder  driven.Recorder
}

// NewAnswerService creates a new answer service.
func NewAnswerService(retriever driving.RetrievalService, generator *AnswerGenerator) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		generator: generator,
		citations: NewCitationBuilder(),
		recorder:  nopRecorder{},
	}
}

// SetQuerySessionStore enables best-effort recording of answered questions.
func (s *AnswerService) SetQuerySessionStore(store driven.QuerySessionStore) {
	s.queries = store
}

// SetRecorder sets the telemetry recorder.
func (s *AnswerService) SetRecorder(r driven.Recorder) {
	if r != nil {
		s.recorder = r
	}
}

// Query answers a question about a book.
// Only invalid input returns an error. Retrieval and generation failures
// are logged and turned into a fallback answer.
func (s *AnswerService) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryOutcome, error) {
	start := time.Now()
	logger.Section("Answer")

	req.Question = strings.TrimSpace(req.Question)
	if req.ContextType == "" {
		req.ContextType = domain.ContextFullBook
	}
	if err := domain.ValidateQuestion(req.Question, req.ContextType, req.SelectedText); err != nil {
		return nil, err
	}
	if req.BookID == "" {
		req.BookID = domain.DefaultBookID
	}

	log := logger.With("answer").
		With("book_id", req.BookID).
		With("question", questionPrefix(req.Question))

	outcome, label, err := s.answer(ctx, req, log)
	if err != nil {
		log.Error("Query failed: %v", err)
		outcome = &domain.QueryOutcome{
			Answer:          ApologyAnswer,
			Citations:       []domain.Citation{},
			RetrievedChunks: []domain.RetrievedChunk{},
			ContextType:     req.ContextType,
			Error:           domain.OutcomeErrorUnavailable,
		}
		label = driven.OutcomeFailed
	}
	outcome.ResponseTimeMS = time.Since(start).Milliseconds()

	s.recorder.QueryAnswered(req.ContextType, label)
	s.persist(ctx, req, outcome, log)

	log.Info("Answered in %dms (%s)", outcome.ResponseTimeMS, label)
	return outcome, nil
}

// HasContext reports whether any passage of the book matches the question.
func (s *AnswerService) HasContext(ctx context.Context, req domain.QueryRequest) bool {
	mode := req.ContextType
	if mode == "" {
		mode = domain.ContextFullBook
	}
	res := s.retriever.Retrieve(ctx, domain.RetrievalRequest{
		Query:        req.Question,
		BookID:       req.BookID,
		Mode:         mode,
		SelectedText: req.SelectedText,
		Limit:        1,
	})
	return res.IsOk() && len(res.Value()) > 0
}

// answer runs retrieval then generation. The returned error is reserved
// for faults the pipeline does not know how to recover from.
func (s *AnswerService) answer(
	ctx context.Context, req domain.QueryRequest, log *logger.Component,
) (*domain.QueryOutcome, string, error) {
	retrieved := s.retriever.Retrieve(ctx, domain.RetrievalRequest{
		Query:        req.Question,
		BookID:       req.BookID,
		Mode:         req.ContextType,
		SelectedText: req.SelectedText,
		Limit:        req.MaxResults,
	})

	var matches []domain.RetrievalMatch
	if err := retrieved.Err(); err != nil {
		if !errors.Is(err, domain.ErrRetrieval) {
			return nil, "", err
		}
		log.Warn("Retrieval failed, answering without context: %v", err)
		s.recorder.Degraded("retrieval")
	} else {
		matches = retrieved.Value()
	}

	outcome := &domain.QueryOutcome{
		Citations:       s.citations.Build(matches),
		RetrievedChunks: retrievedChunks(matches),
		ContextType:     req.ContextType,
	}

	genStart := time.Now()
	defer func() { s.recorder.ObserveStage(driven.StageGenerate, time.Since(genStart)) }()

	if len(matches) == 0 {
		res := s.generator.GenerateNoContext(ctx, req.Question)
		outcome.Answer = res.ValueOr(NoContextAnswer)
		if !res.IsOk() {
			log.Warn("No-context generation failed: %v", res.Err())
			s.recorder.Degraded("generation")
			return outcome, driven.OutcomeFallback, nil
		}
		return outcome, driven.OutcomeNoContext, nil
	}

	res := s.generator.Generate(ctx, req.Question, joinContext(matches), outcome.Citations)
	outcome.Answer = res.ValueOr(ApologyAnswer)
	if !res.IsOk() {
		log.Warn("Generation failed: %v", res.Err())
		s.recorder.Degraded("generation")
		return outcome, driven.OutcomeFallback, nil
	}
	return outcome, driven.OutcomeAnswered, nil
}

// persist records the answered question. Failures never reach the caller.
func (s *AnswerService) persist(
	ctx context.Context, req domain.QueryRequest, outcome *domain.QueryOutcome, log *logger.Component,
) {
	if s.queries == nil {
		return
	}

	qs := &domain.QuerySession{
		ID:              uuid.NewString(),
		SessionToken:    req.SessionToken,
		BookID:          req.BookID,
		Question:        req.Question,
		ContextType:     req.ContextType,
		SelectedText:    req.SelectedText,
		RetrievedChunks: outcome.RetrievedChunks,
		Answer:          outcome.Answer,
		Citations:       outcome.Citations,
		ResponseTimeMS:  outcome.ResponseTimeMS,
		CreatedAt:       time.Now(),
	}
	if err := s.queries.SaveQuerySession(ctx, qs); err != nil {
		log.Warn("Failed to record query session: %v", err)
		s.recorder.Degraded("persistence")
	}
}

func retrievedChunks(matches []domain.RetrievalMatch) []domain.RetrievedChunk {
	chunks := make([]domain.RetrievedChunk, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, domain.RetrievedChunk{
			Content: m.Text,
			Score:   m.Score,
			Source:  m.Source,
		})
	}
	return chunks
}

func joinContext(matches []domain.RetrievalMatch) string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "\n\n")
}

// questionPrefix shortens a question for log lines.
func questionPrefix(question string) string {
	runes := []rune(question)
	if len(runes) <= logPrefixRunes {
		return question
	}
	return string(runes[:logPrefixRunes])
}

// nopRecorder discards telemetry.
type nopRecorder struct{}

func (nopRecorder) ObserveStage(string, time.Duration)       {}
func (nopRecorder) QueryAnswered(domain.ContextType, string) {}
func (nopRecorder) Degraded(string)                          {}
func (nopRecorder) ChunksIngested(int)                       {}
