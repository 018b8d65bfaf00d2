package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for bookrag resources.
	uriScheme = "bookrag://"
)

// bookInfo is the JSON shape of a book resource.
type bookInfo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author,omitempty"`
	WordCount   int        `json:"word_count"`
	TotalChunks int        `json:"total_chunks"`
	Status      string     `json:"ingestion_status"`
	CompletedAt *time.Time `json:"ingestion_completed_at,omitempty"`
}

func toBookInfo(b *domain.Book) bookInfo {
	return bookInfo{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		WordCount:   b.WordCount,
		TotalChunks: b.TotalChunks,
		Status:      string(b.Status),
		CompletedAt: b.IngestionCompletedAt,
	}
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "books",
		Name:        "books",
		Description: "List of all ingested books",
		MIMEType:    "application/json",
	}, s.handleBooksResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "books/{bookId}",
		Name:        "book",
		Description: "Ingestion metadata for one book",
		MIMEType:    "application/json",
	}, s.handleBookResource)
}

// handleBooksResource returns a list of all ingested books.
func (s *Server) handleBooksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingestion == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	books, err := s.ports.Ingestion.Books(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}

	infos := make([]bookInfo, len(books))
	for i := range books {
		infos[i] = toBookInfo(&books[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling books: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleBookResource returns metadata for a single book.
func (s *Server) handleBookResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingestion == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// bookrag://books/{bookId}
	bookID := extractBookID(req.Params.URI)
	if bookID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	book, err := s.ports.Ingestion.Book(ctx, bookID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}

	data, err := json.MarshalIndent(toBookInfo(book), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling book: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractBookID extracts the book ID from a URI like bookrag://books/{bookId}.
func extractBookID(uri string) string {
	const prefix = uriScheme + "books/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
