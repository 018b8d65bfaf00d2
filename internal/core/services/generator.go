package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
)

// Completion settings for each kind of generation.
const (
	DefaultGenerationTimeout = 30 * time.Second

	answerTemperature     = 0.3
	answerMaxTokens       = 1000
	noContextTemperature  = 0.2
	noContextMaxTokens    = 300
	evaluationTemperature = 0.1
	evaluationMaxTokens   = 500

	// promptCitations caps how many citations are listed in the answer prompt.
	promptCitations = 5
)

// AnswerGenerator composes completion requests from book context.
type AnswerGenerator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	timeout time.Duration
}

// NewAnswerGenerator creates a new answer generator.
// Both parameters are optional: without an LLM every generation fails,
// without a prompt store the built-in prompts are used.
func NewAnswerGenerator(llm driven.LLMService, prompts driven.PromptStore) *AnswerGenerator {
	return &AnswerGenerator{
		llm:     llm,
		prompts: prompts,
		timeout: DefaultGenerationTimeout,
	}
}

// SetTimeout overrides the completion timeout.
func (g *AnswerGenerator) SetTimeout(d time.Duration) {
	if d > 0 {
		g.timeout = d
	}
}

// Generate answers a question from retrieved context.
func (g *AnswerGenerator) Generate(
	ctx context.Context, question, contextText string, citations []domain.Citation,
) domain.Result[string] {
	user, err := g.render(driven.PromptAnswerUser, contextText, question, citationsBlock(citations))
	if err != nil {
		return domain.Err[string](err)
	}
	return g.complete(ctx, driven.PromptAnswerSystem, user, answerTemperature, answerMaxTokens, false)
}

// GenerateNoContext explains that the book has nothing on the question.
func (g *AnswerGenerator) GenerateNoContext(ctx context.Context, question string) domain.Result[string] {
	user, err := g.render(driven.PromptNoContextUser, question)
	if err != nil {
		return domain.Err[string](err)
	}
	return g.complete(ctx, driven.PromptNoContextSystem, user, noContextTemperature, noContextMaxTokens, false)
}

// Evaluate asks the backend whether an answer is grounded in its context.
// Any failure yields domain.DefaultAnswerEvaluation.
func (g *AnswerGenerator) Evaluate(ctx context.Context, question, answer, contextText string) domain.AnswerEvaluation {
	verdict := domain.DefaultAnswerEvaluation()

	user, err := g.render(driven.PromptEvaluation, question, contextText, answer)
	if err != nil {
		logger.Warn("Answer evaluation skipped: %v", err)
		return verdict
	}

	res := g.complete(ctx, driven.PromptEvaluationSystem, user, evaluationTemperature, evaluationMaxTokens, true)
	if !res.IsOk() {
		logger.Warn("Answer evaluation failed for %q: %v", questionPrefix(question), res.Err())
		return verdict
	}

	if err := json.Unmarshal([]byte(stripCodeFence(res.Value())), &verdict); err != nil {
		logger.Warn("Answer evaluation returned invalid JSON: %v", err)
		return domain.DefaultAnswerEvaluation()
	}
	return verdict
}

func (g *AnswerGenerator) complete(
	ctx context.Context, systemName, user string, temperature float64, maxTokens int, jsonMode bool,
) domain.Result[string] {
	if g.llm == nil {
		return domain.Err[string](fmt.Errorf("%w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable))
	}

	system, err := g.load(systemName)
	if err != nil {
		return domain.Err[string](err)
	}

	text, err := g.llm.Complete(ctx, driven.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		Timeout:      g.timeout,
		JSON:         jsonMode,
	})
	if err != nil {
		return domain.Err[string](fmt.Errorf("%w: %w", domain.ErrGeneration, err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Err[string](fmt.Errorf("%w: empty completion", domain.ErrGeneration))
	}
	return domain.Ok(text)
}

// render loads a template and fills its placeholders.
func (g *AnswerGenerator) render(name string, args ...any) (string, error) {
	tmpl, err := g.load(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(tmpl, args...), nil
}

func (g *AnswerGenerator) load(name string) (string, error) {
	if g.prompts != nil {
		if p, err := g.prompts.Load(name); err == nil {
			return p, nil
		}
	}
	if p, ok := driven.DefaultPrompt(name); ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown prompt %q", domain.ErrGeneration, name)
}

// citationsBlock lists the leading citations for the answer prompt.
func citationsBlock(citations []domain.Citation) string {
	if len(citations) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\nCitations:\n")
	for i, c := range citations {
		if i == promptCitations {
			break
		}
		fmt.Fprintf(&sb, "%d. %s - %s\n", i+1, orUnknown(c.Title, "Title"), orUnknown(c.Section, "Section"))
	}
	return sb.String()
}

// stripCodeFence removes a markdown code fence some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
