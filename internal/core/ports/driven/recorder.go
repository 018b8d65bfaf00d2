package driven

import (
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// Pipeline stages reported to a Recorder.
const (
	StageRetrieve = "retrieve"
	StageGenerate = "generate"
	StageEmbed    = "embed"
	StageUpsert   = "upsert"
)

// Query outcomes reported to a Recorder.
const (
	OutcomeAnswered  = "answered"
	OutcomeNoContext = "no_context"
	OutcomeFallback  = "fallback"
	OutcomeFailed    = "failed"
)

// Recorder receives pipeline telemetry.
// Implementations must be safe for concurrent use and must not block.
type Recorder interface {
	// ObserveStage records how long one pipeline stage took.
	ObserveStage(stage string, d time.Duration)

	// QueryAnswered counts a finished query by context type and outcome.
	QueryAnswered(contextType domain.ContextType, outcome string)

	// Degraded counts a recovered failure, e.g. "retrieval" or "generation".
	Degraded(reason string)

	// ChunksIngested counts chunks stored for a book.
	ChunksIngested(n int)
}
