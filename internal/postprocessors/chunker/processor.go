// Package chunker provides a boundary-aware overlapping text chunker.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultTargetTokens is the default window size in tokens.
const DefaultTargetTokens = 512

// DefaultOverlapTokens is the default overlap between windows in tokens.
const DefaultOverlapTokens = 100

const (
	// charsPerToken approximates token counts from character counts.
	charsPerToken = 4

	// boundaryWindow is how far back from the naive end sentence and
	// paragraph boundaries are searched.
	boundaryWindow = 200

	// wordWindow is how far back word boundaries are searched.
	wordWindow = 100

	wordBoundaries = " \t\n\r.,;:!?()[]{}\"'"
)

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// Processor splits text into overlapping windows, preferring to cut at
// sentence, then paragraph, then word boundaries.
type Processor struct {
	targetTokens  int
	overlapTokens int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithTargetTokens sets the window size in tokens.
func WithTargetTokens(tokens int) Option {
	return func(p *Processor) {
		if tokens > 0 {
			p.targetTokens = tokens
		}
	}
}

// WithOverlapTokens sets the overlap between windows in tokens.
// An overlap at or above the target is allowed; windows still advance.
func WithOverlapTokens(tokens int) Option {
	return func(p *Processor) {
		if tokens >= 0 {
			p.overlapTokens = tokens
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		targetTokens:  DefaultTargetTokens,
		overlapTokens: DefaultOverlapTokens,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Chunk splits text into trimmed, non-empty windows.
// Offsets are byte offsets into text and never split a UTF-8 sequence.
func (p *Processor) Chunk(text string, opts driven.ChunkOptions) []domain.TextChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	target, overlap := p.window(opts.TargetTokens)
	maxChars := target * charsPerToken
	overlapChars := overlap * charsPerToken
	n := len(text)

	chunks := make([]domain.TextChunk, 0, n/maxChars+1)
	start := 0

	for start < n {
		end := start + maxChars
		if end >= n {
			end = n
		} else {
			end = cutPoint(text, start, alignBack(text, start, end))
		}

		if trimmed := strings.TrimSpace(text[start:end]); trimmed != "" {
			chunks = append(chunks, domain.TextChunk{
				Text:        trimmed,
				StartOffset: start,
				EndOffset:   end,
				ChunkID:     fmt.Sprintf("%s:%s:%s:%d", opts.SourceFile, opts.Title, opts.Section, len(chunks)),
			})
		}

		if end >= n {
			break
		}

		next := end - overlapChars
		if next <= start {
			next = start + maxChars
		}
		if next <= start {
			next = start + 1
		}
		start = alignForward(text, next)
	}

	return chunks
}

// window resolves the effective sizes for one call. A per-call target keeps
// the configured overlap, even when the overlap is the larger of the two.
func (p *Processor) window(override int) (target, overlap int) {
	if override <= 0 {
		return p.targetTokens, p.overlapTokens
	}
	return override, p.overlapTokens
}

// cutPoint picks where an interior window ends.
func cutPoint(text string, start, end int) int {
	if pos := findSentenceEnd(text, start, end); pos != -1 {
		return pos
	}
	if pos := findParagraphEnd(text, start, end); pos != -1 {
		return pos
	}
	if pos := findWordEnd(text, start, end); pos != -1 {
		return pos
	}
	return end
}

// findSentenceEnd returns the position just after the last sentence
// terminator and its trailing whitespace in the trailing search window.
func findSentenceEnd(text string, start, end int) int {
	from := max(start, end-boundaryWindow)
	window := text[from:end]

	if locs := sentenceEnd.FindAllStringIndex(window, -1); len(locs) > 0 {
		return from + locs[len(locs)-1][1]
	}
	if last := window[len(window)-1]; last == '.' || last == '!' || last == '?' {
		return end
	}
	return -1
}

// findParagraphEnd returns the position after the last blank line, or after
// the last newline, in the trailing search window.
func findParagraphEnd(text string, start, end int) int {
	from := max(start, end-boundaryWindow)
	window := text[from:end]

	if i := strings.LastIndex(window, "\n\n"); i != -1 {
		return from + i + 2
	}
	if i := strings.LastIndexByte(window, '\n'); i != -1 {
		return from + i + 1
	}
	return -1
}

// findWordEnd returns the position of the last whitespace or punctuation
// character strictly inside (start, end).
func findWordEnd(text string, start, end int) int {
	from := max(start, end-wordWindow)
	for i := end - 1; i >= from; i-- {
		if i > start && strings.IndexByte(wordBoundaries, text[i]) != -1 {
			return i
		}
	}
	return -1
}

// alignBack moves pos to the start of the rune containing it, unless that
// would not leave the window past start.
func alignBack(text string, start, pos int) int {
	p := pos
	for p > start && p < len(text) && !utf8.RuneStart(text[p]) {
		p--
	}
	if p <= start {
		return alignForward(text, pos)
	}
	return p
}

// alignForward moves pos to the next rune start.
func alignForward(text string, pos int) int {
	for pos < len(text) && !utf8.RuneStart(text[pos]) {
		pos++
	}
	return pos
}
