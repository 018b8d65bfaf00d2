// Package books lists ingested books and picks the one to ask about.
package books

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/messages"
	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui/styles"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
)

// View is the book picker.
type View struct {
	styles           *styles.Styles
	ingestionService driving.IngestionService
	ctx              context.Context

	books    []domain.Book
	selected int
	current  string
	width    int
	height   int
	ready    bool
	err      error
	loading  bool
}

// NewView creates a new books view.
func NewView(s *styles.Styles, ingestionService driving.IngestionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:           s,
		ingestionService: ingestionService,
		ctx:              context.Background(),
		current:          domain.DefaultBookID,
	}
}

// WithContext sets the context for loading books.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the book list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadBooks()
}

func (v *View) loadBooks() tea.Cmd {
	svc, ctx := v.ingestionService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.BooksLoaded{Err: fmt.Errorf("ingestion service not available")}
		}
		books, err := svc.Books(ctx)
		return messages.BooksLoaded{Books: books, Err: err}
	}
}

// Update handles messages for the books view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.BooksLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.books = msg.Books
			v.selected = 0
			for i := range v.books {
				if v.books[i].ID == v.current {
					v.selected = i
				}
			}
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.books)-1 {
			v.selected++
		}
	case "r":
		return v, v.Init()
	case "enter":
		if len(v.books) == 0 {
			return v, nil
		}
		book := v.books[v.selected]
		v.current = book.ID
		return v, func() tea.Msg { return messages.BookChosen{BookID: book.ID, Title: book.Title} }
	}
	return v, nil
}

// View renders the book list.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Books"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading books..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.books) == 0:
		b.WriteString(v.styles.Muted.Render("No books ingested yet. Run 'bookrag ingest' first."))
	default:
		for i := range v.books {
			b.WriteString(v.renderBook(i, &v.books[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Ask about this book  [r] Refresh  [Esc] Back"))
	return b.String()
}

func (v *View) renderBook(i int, book *domain.Book) string {
	marker := " "
	if book.ID == v.current {
		marker = "*"
	}
	label := fmt.Sprintf("%s %s", marker, book.Title)
	if book.Author != "" {
		label += " by " + book.Author
	}
	detail := fmt.Sprintf("  %s · %d chunks · %s", book.ID, book.TotalChunks, book.Status)

	status := v.styles.Muted
	switch book.Status {
	case domain.IngestionCompleted:
		status = v.styles.Success
	case domain.IngestionFailed:
		status = v.styles.Error
	case domain.IngestionPending, domain.IngestionInProgress:
		status = v.styles.Warning
	}

	if i == v.selected {
		return v.styles.Selected.Render(">"+label) + status.Render(detail)
	}
	return " " + v.styles.Normal.Render(label) + status.Render(detail)
}

// SetCurrent marks the active book.
func (v *View) SetCurrent(bookID string) {
	v.current = bookID
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

func (v *View) Books() []domain.Book { return v.books }
func (v *View) Selected() int        { return v.selected }
func (v *View) Err() error           { return v.err }
