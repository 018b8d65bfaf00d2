// Package tui provides an interactive terminal user interface for bookrag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("tui: answer service is required")
