// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/components/citations"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/components/input"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/components/status"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/keymap"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/messages"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/styles"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
)

// Focus identifies which part of the view receives keys.
type Focus int

const (
	FocusQuestion Focus = iota
	FocusSelection
	FocusAnswer
)

// View asks questions about the active book and shows the cited answer.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	question  *input.QuestionInput
	selection *input.SelectionInput
	answer    viewport.Model
	citations *citations.List
	statusbar *status.Bar
	spinner   spinner.Model

	answerService driving.AnswerService
	ctx           context.Context
	bookID        string
	sessionToken  string

	mode    domain.ContextType
	focus   Focus
	asking  bool
	outcome *domain.QueryOutcome
	err     error

	width  int
	height int
	ready  bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	v := &View{
		styles:        s,
		keymap:        km,
		question:      input.NewQuestionInput(s),
		selection:     input.NewSelectionInput(s),
		answer:        viewport.New(80, 8),
		citations:     citations.NewList(s),
		statusbar:     status.NewBar(s, km),
		spinner:       sp,
		answerService: answerService,
		ctx:           context.Background(),
		bookID:        domain.DefaultBookID,
		mode:          domain.ContextFullBook,
		width:         80,
		height:        24,
	}
	v.statusbar.SetBook(v.bookID)
	return v
}

// WithContext sets the context for queries.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.question.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case spinner.TickMsg:
		if !v.asking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.asking = false
		v.setError(msg.Err)
		return v, nil
	}

	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.asking {
		return v, nil
	}

	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focus == FocusAnswer {
		return v.handleAnswerKey(msg)
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.ToggleSelection):
		if v.mode == domain.ContextSelection {
			v.SetMode(domain.ContextFullBook)
		} else {
			v.SetMode(domain.ContextSelection)
		}
		return v, nil

	case keymap.Matches(msg.String(), v.keymap.SwitchFocus) && v.mode == domain.ContextSelection:
		if v.focus == FocusSelection {
			return v, v.focusQuestion()
		}
		return v, v.focusSelection()

	case msg.Type == tea.KeyEnter && v.focus == FocusQuestion:
		return v, v.submit()
	}

	var cmd tea.Cmd
	if v.focus == FocusSelection {
		v.selection, cmd = v.selection.Update(msg)
	} else {
		v.question, cmd = v.question.Update(msg)
	}
	return v, cmd
}

// handleAnswerKey navigates the answer and its citations.
func (v *View) handleAnswerKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.citations.MoveUp()
		return v, nil
	case "down", "j":
		v.citations.MoveDown()
		return v, nil
	case "n":
		v.question.SetValue("")
		v.statusbar.Clear()
		if v.mode == domain.ContextSelection {
			return v, v.focusSelection()
		}
		return v, v.focusQuestion()
	}

	// pgup/pgdown and friends scroll the answer
	var cmd tea.Cmd
	v.answer, cmd = v.answer.Update(msg)
	return v, cmd
}

// submit builds the request and starts the query.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.question.Value())
	if question == "" {
		return nil
	}

	req := domain.QueryRequest{
		Question:     question,
		BookID:       v.bookID,
		SessionToken: v.sessionToken,
		ContextType:  v.mode,
	}
	if v.mode == domain.ContextSelection {
		req.SelectedText = v.selection.Value()
	}

	v.asking = true
	v.err = nil
	v.statusbar.SetState(status.StateAsking)
	return tea.Batch(v.spinner.Tick, v.ask(req))
}

func (v *View) ask(req domain.QueryRequest) tea.Cmd {
	svc, ctx := v.answerService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		outcome, err := svc.Query(ctx, req)
		return messages.AnswerReceived{Request: req, Outcome: outcome, Err: err}
	}
}

// handleAnswer shows an answer or the validation error that prevented one.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.asking = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Outcome == nil {
		return
	}

	v.err = nil
	v.outcome = msg.Outcome
	v.answer.SetContent(v.styles.Answer.Width(max(v.width-4, 20)).Render(msg.Outcome.Answer))
	v.answer.GotoTop()
	v.citations.SetCitations(msg.Outcome.Citations)

	v.statusbar.SetAnswered(len(msg.Outcome.Citations), msg.Outcome.ResponseTimeMS)
	v.statusbar.SetMessage("")
	if msg.Outcome.Error != "" {
		v.statusbar.SetMessage("Service degraded: " + msg.Outcome.Error)
	}

	v.focus = FocusAnswer
	v.question.Blur()
	v.selection.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	if v.focus == FocusAnswer {
		v.focus = FocusQuestion
		v.question.Focus()
	}
}

func (v *View) focusQuestion() tea.Cmd {
	v.focus = FocusQuestion
	v.selection.Blur()
	return v.question.Focus()
}

func (v *View) focusSelection() tea.Cmd {
	v.focus = FocusSelection
	v.question.Blur()
	return v.selection.Focus()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)

	modeLabel := "whole book"
	if v.mode == domain.ContextSelection {
		modeLabel = "selection"
	}
	sections = append(sections,
		v.styles.Title.Render("bookrag")+" "+v.styles.Muted.Render("· "+modeLabel),
		"")

	if v.mode == domain.ContextSelection {
		sections = append(sections, v.selection.View(), "")
	}
	sections = append(sections, v.question.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.asking {
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Searching the book..."), "")
	} else if v.outcome != nil {
		sections = append(sections, v.answer.View(), "", v.citations.View(), "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.question.SetWidth(width)
	v.selection.SetWidth(width)
	v.statusbar.SetWidth(width)

	// header, inputs and status take about 10 lines; the rest is split
	rest := max(height-10, 6)
	v.answer.Width = width
	v.answer.Height = rest / 2
	v.citations.SetDimensions(width, rest-rest/2)
}

// SetMode switches between whole-book and selection questions.
func (v *View) SetMode(mode domain.ContextType) {
	v.mode = mode
	if mode == domain.ContextSelection {
		v.focusSelection()
		return
	}
	v.focusQuestion()
}

// SetBook sets the book questions are asked about.
func (v *View) SetBook(bookID string) {
	if bookID == "" {
		bookID = domain.DefaultBookID
	}
	v.bookID = bookID
	v.statusbar.SetBook(bookID)
}

// SetSessionToken tags subsequent questions with a session.
func (v *View) SetSessionToken(token string) {
	v.sessionToken = token
}

// Reset clears inputs and the last answer.
func (v *View) Reset() {
	v.question.Reset()
	v.selection.Reset()
	v.answer.SetContent("")
	v.citations.SetCitations(nil)
	v.outcome = nil
	v.err = nil
	v.asking = false
	v.statusbar.Clear()
	v.SetMode(v.mode)
}

func (v *View) Mode() domain.ContextType      { return v.mode }
func (v *View) Focus() Focus                  { return v.focus }
func (v *View) Asking() bool                  { return v.asking }
func (v *View) Outcome() *domain.QueryOutcome { return v.outcome }
func (v *View) Err() error                    { return v.err }
func (v *View) BookID() string                { return v.bookID }
func (v *View) Question() string              { return v.question.Value() }
func (v *View) Ready() bool                   { return v.ready }

// SetQuestion sets the question text.
func (v *View) SetQuestion(q string) {
	v.question.SetValue(q)
}

// SetSelection sets the selected passage.
func (v *View) SetSelection(s string) {
	v.selection.SetValue(s)
}
