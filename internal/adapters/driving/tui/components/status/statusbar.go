// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/keymap"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateAsking   State = "asking"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Bar displays the active book, the query state and keybinding hints.
type Bar struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	state     State
	message   string
	bookID    string
	citations int
	elapsedMS int64
	width     int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	book := ""
	if s.bookID != "" {
		book = s.styles.Subtitle.Render(s.bookID) + " "
	}

	switch s.state {
	case StateAsking:
		return book + s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			return book + s.styles.Error.Render("Error: "+s.message)
		}
		return book + s.styles.Error.Render("Error")
	case StateAnswered:
		text := fmt.Sprintf("%d citations in %dms", s.citations, s.elapsedMS)
		if s.message != "" {
			return book + s.styles.Warning.Render(s.message)
		}
		return book + s.styles.Normal.Render(text)
	case StateReady:
	}
	if s.message != "" {
		return book + s.styles.Muted.Render(s.message)
	}
	return book + s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateAnswered {
		bindings = s.keymap.AnswerHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func (s *Bar) SetState(state State)  { s.state = state }
func (s *Bar) State() State          { return s.state }
func (s *Bar) SetMessage(msg string) { s.message = msg }
func (s *Bar) Message() string       { return s.message }
func (s *Bar) SetBook(bookID string) { s.bookID = bookID }
func (s *Bar) SetWidth(width int)    { s.width = width }
func (s *Bar) Width() int            { return s.width }

// SetAnswered records the citation count and latency of the last answer.
func (s *Bar) SetAnswered(citations int, elapsedMS int64) {
	s.state = StateAnswered
	s.citations = citations
	s.elapsedMS = elapsedMS
}

// Clear resets the status bar to the ready state, keeping the book.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.citations = 0
	s.elapsedMS = 0
}
