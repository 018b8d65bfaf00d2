// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/styles"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// QuestionInput is a single-line question prompt.
type QuestionInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewQuestionInput creates a new question input component.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask a question about the book..."
	ti.Focus()
	ti.CharLimit = domain.MaxQuestionLength
	ti.Width = 50

	return &QuestionInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the question input.
func (q *QuestionInput) View() string {
	label := q.styles.Title.Render("Ask: ")
	field := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

func (q *QuestionInput) Value() string         { return q.textinput.Value() }
func (q *QuestionInput) SetValue(value string) { q.textinput.SetValue(value) }
func (q *QuestionInput) Focus() tea.Cmd        { return q.textinput.Focus() }
func (q *QuestionInput) Blur()                 { q.textinput.Blur() }
func (q *QuestionInput) Focused() bool         { return q.textinput.Focused() }
func (q *QuestionInput) Reset()                { q.textinput.Reset() }

// SetWidth sets the width of the input.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	// label and border
	q.textinput.Width = max(width-12, 20)
}

// SelectionInput is a multi-line area for pasting the passage a question is about.
type SelectionInput struct {
	textarea textarea.Model
	styles   *styles.Styles
}

// NewSelectionInput creates a new selection input component.
func NewSelectionInput(s *styles.Styles) *SelectionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ta := textarea.New()
	ta.Placeholder = "Paste the passage you selected..."
	ta.CharLimit = domain.MaxSelectionLength
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.SetWidth(50)

	return &SelectionInput{textarea: ta, styles: s}
}

// Update handles input messages.
func (si *SelectionInput) Update(msg tea.Msg) (*SelectionInput, tea.Cmd) {
	var cmd tea.Cmd
	si.textarea, cmd = si.textarea.Update(msg)
	return si, cmd
}

// View renders the selection area with its label.
func (si *SelectionInput) View() string {
	label := si.styles.Subtitle.Render("Selection:")
	return lipgloss.JoinVertical(lipgloss.Left, label, si.styles.InputField.Render(si.textarea.View()))
}

func (si *SelectionInput) Value() string         { return si.textarea.Value() }
func (si *SelectionInput) SetValue(value string) { si.textarea.SetValue(value) }
func (si *SelectionInput) Focus() tea.Cmd        { return si.textarea.Focus() }
func (si *SelectionInput) Blur()                 { si.textarea.Blur() }
func (si *SelectionInput) Focused() bool         { return si.textarea.Focused() }
func (si *SelectionInput) Reset()                { si.textarea.Reset() }

// SetWidth sets the width of the area.
func (si *SelectionInput) SetWidth(width int) {
	si.textarea.SetWidth(max(width-6, 20))
}
