package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// AskBookInput is the input schema for the ask_book tool.
type AskBookInput struct {
	Question   string `json:"question" jsonschema:"the question to answer from the book"`
	BookID     string `json:"book_id,omitempty" jsonschema:"the book to search (default: default-book)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of passages to retrieve (default 5)"`
}

// AskSelectionInput is the input schema for the ask_selection tool.
type AskSelectionInput struct {
	Question     string `json:"question" jsonschema:"the question about the selected text"`
	SelectedText string `json:"selected_text" jsonschema:"the passage the reader highlighted"`
	BookID       string `json:"book_id,omitempty" jsonschema:"the book the selection comes from (default: default-book)"`
}

// AnswerOutput is the output schema for the ask tools.
type AnswerOutput struct {
	Answer         string            `json:"answer"`
	Citations      []domain.Citation `json:"citations"`
	ContextType    string            `json:"context_type"`
	ResponseTimeMS int64             `json:"response_time_ms"`
	Error          string            `json:"error,omitempty"`
}

// IngestBookInput is the input schema for the ingest_book tool.
type IngestBookInput struct {
	BookID    string `json:"book_id" jsonschema:"identifier for the book (letters, digits, dash, underscore)"`
	Title     string `json:"title" jsonschema:"the book title"`
	Content   string `json:"content" jsonschema:"the full plain-text content of the book"`
	Author    string `json:"author,omitempty" jsonschema:"the book author"`
	ChunkSize int    `json:"chunk_size,omitempty" jsonschema:"target chunk size in tokens (default 512)"`
}

// IngestBookOutput is the output schema for the ingest_book tool.
type IngestBookOutput struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	TotalChunks      int    `json:"total_chunks"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_book",
		Description: "Answer a question using passages retrieved from an ingested book, with citations",
	}, s.handleAskBook)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_selection",
		Description: "Answer a question about a passage the reader selected, grounded in that passage",
	}, s.handleAskSelection)

	if s.ports.Ingestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_book",
			Description: "Chunk, embed and index a book so it can be queried",
		}, s.handleIngestBook)
	}
}

// handleAskBook handles the ask_book tool invocation.
func (s *Server) handleAskBook(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskBookInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	return s.ask(ctx, domain.QueryRequest{
		Question:    input.Question,
		BookID:      input.BookID,
		ContextType: domain.ContextFullBook,
		MaxResults:  input.MaxResults,
	})
}

// handleAskSelection handles the ask_selection tool invocation.
func (s *Server) handleAskSelection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskSelectionInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	return s.ask(ctx, domain.QueryRequest{
		Question:     input.Question,
		BookID:       input.BookID,
		ContextType:  domain.ContextSelection,
		SelectedText: input.SelectedText,
	})
}

func (s *Server) ask(ctx context.Context, req domain.QueryRequest) (*mcp.CallToolResult, AnswerOutput, error) {
	if req.BookID == "" {
		req.BookID = domain.DefaultBookID
	}
	req.SessionToken = s.sessionToken

	outcome, err := s.ports.Answer.Query(ctx, req)
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	citations := outcome.Citations
	if citations == nil {
		citations = []domain.Citation{}
	}
	return nil, AnswerOutput{
		Answer:         outcome.Answer,
		Citations:      citations,
		ContextType:    string(outcome.ContextType),
		ResponseTimeMS: outcome.ResponseTimeMS,
		Error:          outcome.Error,
	}, nil
}

// handleIngestBook handles the ingest_book tool invocation.
func (s *Server) handleIngestBook(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestBookInput,
) (*mcp.CallToolResult, IngestBookOutput, error) {
	req := domain.IngestRequest{
		BookID:    input.BookID,
		Title:     input.Title,
		Content:   input.Content,
		Author:    input.Author,
		ChunkSize: input.ChunkSize,
	}
	if err := domain.ValidateIngestData(req); err != nil {
		return nil, IngestBookOutput{}, err
	}

	result, err := s.ports.Ingestion.Ingest(ctx, req)
	if err != nil {
		return nil, IngestBookOutput{}, err
	}
	return nil, IngestBookOutput{
		Status:           result.Status,
		Message:          result.Message,
		TotalChunks:      result.TotalChunks,
		ProcessingTimeMS: result.ProcessingTimeMS,
	}, nil
}
