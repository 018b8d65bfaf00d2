package markdown

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	codeBlock    = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	starEmph     = regexp.MustCompile(`\*{1,2}([^*\n]+)\*{1,2}`)
	underEmph    = regexp.MustCompile(`(^|\W)_{1,2}([^_\n]+)_{1,2}(\W|$)`)
	blockquote   = regexp.MustCompile(`(?m)^>[ \t]?`)
	hr           = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	listMarkers  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberedList = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles Markdown book files.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise takes the title from the first H1 and strips formatting.
// Code block bodies and link texts are kept since they carry book content.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawBook) (*domain.NormalisedBook, error) {
	if raw == nil {
		return nil, domain.NewValidationError("file", "no content")
	}

	text := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")
	return &domain.NormalisedBook{
		Title:   extractTitle(text, raw.URI),
		Content: stripMarkdown(text),
		Format:  "markdown",
	}, nil
}

// extractTitle returns the first H1 heading, falling back to the file name.
func extractTitle(content, uri string) string {
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if !inFence && strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return TitleFromPath(uri)
}

// TitleFromPath turns "the_great-book.md" into "the great book".
func TitleFromPath(uri string) string {
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}

func stripMarkdown(content string) string {
	content = htmlComments.ReplaceAllString(content, "")
	content = codeBlock.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = hr.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = starEmph.ReplaceAllString(content, "$1")
	content = underEmph.ReplaceAllString(content, "$1$2$3")
	content = blankRuns.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
