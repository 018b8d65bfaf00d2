// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// AnswerReceived carries the outcome of a question back to the model.
// Err is set only for validation failures.
type AnswerReceived struct {
	Request domain.QueryRequest
	Outcome *domain.QueryOutcome
	Err     error
}

// BooksLoaded carries the ingested books.
type BooksLoaded struct {
	Books []domain.Book
	Err   error
}

// BookChosen is sent when the user picks the book to ask about.
type BookChosen struct {
	BookID string
	Title  string
}

// SessionStarted carries the token used to record the TUI's questions.
type SessionStarted struct {
	Token string
	Err   error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
	// Selection opens the ask view in selection mode.
	Selection bool
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question and answer view.
	ViewAsk
	// ViewBooks lists ingested books.
	ViewBooks
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewBooks:
		return "books"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
