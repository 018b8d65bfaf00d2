// Package citations renders the sources behind an answer as a navigable list.
package citations

import (
	"fmt"
	"strings"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/styles"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// List displays citations, one title line and one preview line each.
type List struct {
	citations []domain.Citation
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewList creates a new citation list component.
func NewList(s *styles.Styles) *List {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &List{styles: s, width: 80, height: 10}
}

// View renders the visible window of citations.
func (l *List) View() string {
	if len(l.citations) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(l.citations)*2+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.citations))), "")

	// two lines per citation
	visible := max((l.height-2)/2, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.citations))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderCitation(i, &l.citations[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *List) renderCitation(index int, c *domain.Citation) string {
	label := fmt.Sprintf("%d. %s", index+1, c.Title)
	if c.Section != "" && c.Section != c.Title {
		label += " (" + c.Section + ")"
	}
	if c.PageNumber != nil {
		label += fmt.Sprintf(", p. %d", *c.PageNumber)
	}
	label = truncate(label, l.width-12)
	score := fmt.Sprintf("%.2f", c.RelevanceScore)

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render("> "+label) + " " + l.styles.Score(c.RelevanceScore).Render(score)
	} else {
		titleLine = "  " + l.styles.Citation.Render(label) + " " + l.styles.Score(c.RelevanceScore).Render(score)
	}

	preview := strings.Join(strings.Fields(c.TextPreview), " ")
	previewLine := l.styles.Quote.Render("    " + truncate(preview, l.width-6))
	return titleLine + "\n" + previewLine
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	n = max(n, 10)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// SetCitations replaces the list and selects the first entry.
func (l *List) SetCitations(c []domain.Citation) {
	l.citations = c
	l.selected = 0
}

func (l *List) Citations() []domain.Citation { return l.citations }
func (l *List) Selected() int                { return l.selected }
func (l *List) Count() int                   { return len(l.citations) }

// SelectedCitation returns the highlighted citation, or nil if the list is empty.
func (l *List) SelectedCitation() *domain.Citation {
	if l.selected < 0 || l.selected >= len(l.citations) {
		return nil
	}
	return &l.citations[l.selected]
}

// MoveUp moves selection up.
func (l *List) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *List) MoveDown() {
	if l.selected < len(l.citations)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *List) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}
