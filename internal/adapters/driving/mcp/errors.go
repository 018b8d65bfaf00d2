// Package mcp provides an MCP (Model Context Protocol) server adapter for bookrag.
// It lets AI assistants ask questions about ingested books and add new ones.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
