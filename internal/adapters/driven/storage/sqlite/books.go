package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// ==================== Book Store ====================

// bookStore implements driven.BookStore.
type bookStore struct {
	store *Store
}

var _ driven.BookStore = (*bookStore)(nil)

// SaveBook stores or replaces a book.
func (s *bookStore) SaveBook(ctx context.Context, book domain.Book) error {
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	if book.UpdatedAt.IsZero() {
		book.UpdatedAt = now
	}
	if book.Status == "" {
		book.Status = domain.IngestionPending
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO books (id, title, author, word_count, total_chunks, ingestion_status,
			ingestion_started_at, ingestion_completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			word_count = excluded.word_count,
			total_chunks = excluded.total_chunks,
			ingestion_status = excluded.ingestion_status,
			ingestion_started_at = excluded.ingestion_started_at,
			ingestion_completed_at = excluded.ingestion_completed_at,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, book.ID, book.Title, book.Author, book.WordCount, book.TotalChunks, string(book.Status),
		nullNanos(book.IngestionStartedAt), nullNanos(book.IngestionCompletedAt),
		toNanos(book.CreatedAt), toNanos(book.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *bookStore) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, author, word_count, total_chunks, ingestion_status,
			ingestion_started_at, ingestion_completed_at, created_at, updated_at
		FROM books WHERE id = ?
	`, id)

	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ListBooks returns all books ordered by ID.
func (s *bookStore) ListBooks(ctx context.Context) ([]domain.Book, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, author, word_count, total_chunks, ingestion_status,
			ingestion_started_at, ingestion_completed_at, created_at, updated_at
		FROM books ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	books := make([]domain.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*domain.Book, error) {
	var book domain.Book
	var status string
	var started, completed sql.NullInt64
	var createdAt, updatedAt int64
	if err := row.Scan(&book.ID, &book.Title, &book.Author, &book.WordCount, &book.TotalChunks,
		&status, &started, &completed, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning book: %w", err)
	}
	book.Status = domain.IngestionStatus(status)
	book.IngestionStartedAt = timePtr(started)
	book.IngestionCompletedAt = timePtr(completed)
	book.CreatedAt = fromNanos(createdAt)
	book.UpdatedAt = fromNanos(updatedAt)
	return &book, nil
}

// ==================== Content Store ====================

// contentStore implements driven.ContentStore.
type contentStore struct {
	store *Store
}

var _ driven.ContentStore = (*contentStore)(nil)

// ReplaceContent atomically swaps a book's rows for the given ones.
func (s *contentStore) ReplaceContent(ctx context.Context, bookID string, rows []domain.ContentEmbedding) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM content_embeddings WHERE book_id = ?", bookID); err != nil {
		return fmt.Errorf("deleting content: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO content_embeddings (content_id, book_id, chunk_text, chunk_title, section,
			chunk_index, source_file, embedding_status, vector_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range rows {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = now
		}
		if r.Status == "" {
			r.Status = domain.EmbeddingStatusPending
		}
		if _, err := stmt.ExecContext(ctx, r.ContentID, bookID, r.ChunkText, r.ChunkTitle, r.Section,
			r.ChunkIndex, r.SourceFile, string(r.Status), r.VectorID,
			toNanos(r.CreatedAt), toNanos(r.UpdatedAt)); err != nil {
			return fmt.Errorf("inserting content %s: %w", r.ContentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing content: %w", err)
	}
	return nil
}

// ListContent returns a book's rows ordered by chunk index.
func (s *contentStore) ListContent(ctx context.Context, bookID string) ([]domain.ContentEmbedding, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT content_id, book_id, chunk_text, chunk_title, section, chunk_index,
			source_file, embedding_status, vector_id, created_at, updated_at
		FROM content_embeddings WHERE book_id = ? ORDER BY chunk_index
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("querying content: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ContentEmbedding, 0)
	for rows.Next() {
		var r domain.ContentEmbedding
		var status string
		var createdAt, updatedAt int64
		if err := rows.Scan(&r.ContentID, &r.BookID, &r.ChunkText, &r.ChunkTitle, &r.Section,
			&r.ChunkIndex, &r.SourceFile, &status, &r.VectorID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		r.Status = domain.EmbeddingStatus(status)
		r.CreatedAt = fromNanos(createdAt)
		r.UpdatedAt = fromNanos(updatedAt)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content: %w", err)
	}
	return result, nil
}
