package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/keymap"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/messages"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/styles"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/views/ask"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/views/books"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/views/menu"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	menuView  *menu.View
	askView   *ask.View
	booksView *books.View

	currentView  messages.ViewType
	bookID       string
	sessionToken string
	err          error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		help:        help.New(),
		menuView:    menu.NewView(s),
		askView:     ask.NewView(s, km, ports.Answer),
		booksView:   books.NewView(s, ports.Ingestion),
		currentView: messages.ViewMenu,
		bookID:      domain.DefaultBookID,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	a.booksView.WithContext(ctx)
	return a
}

// WithBook sets the book questions are asked about.
func (a *App) WithBook(bookID string) *App {
	a.setBook(bookID, bookID)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("bookrag"),
		a.startSession(),
	)
}

// startSession asks the session service for a token, if there is one.
func (a *App) startSession() tea.Cmd {
	if a.ports.Sessions == nil {
		return nil
	}
	sessions, ctx := a.ports.Sessions, a.ctx
	return func() tea.Msg {
		session, err := sessions.Create(ctx, false, "")
		if err != nil {
			return messages.SessionStarted{Err: err}
		}
		return messages.SessionStarted{Token: session.Token}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		a.menuView.SetDimensions(msg.Width, msg.Height)
		a.askView.SetDimensions(msg.Width, msg.Height)
		a.booksView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewAsk:
			a.askView, cmd = a.askView.Update(msg)
			a.err = a.askView.Err()
		case messages.ViewBooks:
			a.booksView, cmd = a.booksView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "q" {
				a.currentView = messages.ViewMenu
			}
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewAsk:
			a.askView.Reset()
			if msg.Selection {
				a.askView.SetMode(domain.ContextSelection)
			} else {
				a.askView.SetMode(domain.ContextFullBook)
			}
			return a, a.askView.Init()
		case messages.ViewBooks:
			return a, a.booksView.Init()
		case messages.ViewMenu, messages.ViewHelp:
		}
		return a, nil

	case messages.BookChosen:
		title := msg.Title
		if title == "" {
			title = msg.BookID
		}
		a.setBook(msg.BookID, title)
		a.currentView = messages.ViewAsk
		a.askView.Reset()
		return a, a.askView.Init()

	case messages.SessionStarted:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.sessionToken = msg.Token
		a.askView.SetSessionToken(msg.Token)
		return a, nil

	case messages.BooksLoaded:
		a.booksView, cmd = a.booksView.Update(msg)
		return a, cmd

	case messages.AnswerReceived, messages.ErrorOccurred:
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	if a.currentView == messages.ViewAsk {
		a.askView, cmd = a.askView.Update(msg)
	}
	return a, cmd
}

func (a *App) setBook(bookID, title string) {
	if bookID == "" {
		bookID = domain.DefaultBookID
		title = bookID
	}
	a.bookID = bookID
	a.askView.SetBook(bookID)
	a.booksView.SetCurrent(bookID)
	a.menuView.SetBook(title)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewBooks:
		return a.booksView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

// viewHelp renders the help view from the keymap.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("Selection mode answers only from the passage you paste."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

func (a *App) CurrentView() messages.ViewType { return a.currentView }
func (a *App) BookID() string                 { return a.bookID }
func (a *App) SessionToken() string           { return a.sessionToken }
func (a *App) Err() error                     { return a.err }
func (a *App) Ready() bool                    { return a.ready }

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.Update(tea.WindowSizeMsg{Width: width, Height: height})
}
