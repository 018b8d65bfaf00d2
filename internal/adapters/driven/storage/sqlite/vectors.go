package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/vectorindex"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// DefaultCollection names the vector collection used when none is given.
const DefaultCollection = "book_content_chunks"

// VectorIndex stores embeddings as little-endian float32 BLOBs and scores
// candidates with brute-force cosine similarity. It suits single-user
// installs where a book is a few thousand chunks.
type VectorIndex struct {
	store      *Store
	collection string
}

var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex returns a VectorIndex backed by this store.
func (s *Store) VectorIndex(collection string) *VectorIndex {
	if collection == "" {
		collection = DefaultCollection
	}
	return &VectorIndex{store: s, collection: collection}
}

// EnsureCollection records the collection's vector size on first use.
// A later call with a different size fails.
func (x *VectorIndex) EnsureCollection(ctx context.Context, dimensions int, distance driven.Distance) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: invalid dimensions %d", domain.ErrIndexUnavailable, dimensions)
	}
	if distance != driven.DistanceCosine {
		return fmt.Errorf("%w: unsupported distance %q", domain.ErrIndexUnavailable, distance)
	}

	_, err := x.store.db.ExecContext(ctx, `
		INSERT INTO vector_collections (name, dimensions, distance) VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, x.collection, dimensions, string(distance))
	if err != nil {
		return fmt.Errorf("%w: creating collection: %w", domain.ErrIndexUnavailable, err)
	}

	existing, err := x.dimensions(ctx)
	if err != nil {
		return err
	}
	if existing != dimensions {
		return fmt.Errorf("%w: collection %s has %d dimensions, got %d",
			domain.ErrIndexUnavailable, x.collection, existing, dimensions)
	}
	return nil
}

func (x *VectorIndex) dimensions(ctx context.Context) (int, error) {
	var dims int
	err := x.store.db.QueryRowContext(ctx,
		"SELECT dimensions FROM vector_collections WHERE name = ?", x.collection).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: reading collection: %w", domain.ErrIndexUnavailable, err)
	}
	return dims, nil
}

// Upsert stores or replaces records with their vectors in one transaction.
func (x *VectorIndex) Upsert(ctx context.Context, records []domain.ContentRecord, vectors [][]float32) ([]string, error) {
	if len(records) != len(vectors) {
		return nil, fmt.Errorf("%w: %d records for %d vectors", domain.ErrIndexUnavailable, len(records), len(vectors))
	}

	dims, err := x.dimensions(ctx)
	if err != nil {
		return nil, err
	}
	if dims == 0 {
		return nil, fmt.Errorf("%w: collection not created", domain.ErrIndexUnavailable)
	}
	for _, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: vector has %d dimensions, want %d", domain.ErrIndexUnavailable, len(v), dims)
		}
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: beginning transaction: %w", domain.ErrIndexUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (collection, content_id, book_id, title, section, page_number, chunk_index,
			text, source_file, metadata, embedding, norm, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, content_id) DO UPDATE SET
			book_id = excluded.book_id,
			title = excluded.title,
			section = excluded.section,
			page_number = excluded.page_number,
			chunk_index = excluded.chunk_index,
			text = excluded.text,
			source_file = excluded.source_file,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			norm = excluded.norm,
			created_at = excluded.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing upsert: %w", domain.ErrIndexUnavailable, err)
	}
	defer stmt.Close()

	ids := make([]string, len(records))
	for i, r := range records {
		metadataJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshalling metadata: %w", err)
		}
		var page sql.NullInt64
		if r.PageNumber != nil {
			page = sql.NullInt64{Int64: int64(*r.PageNumber), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, x.collection, r.ContentID, r.BookID, r.Title, r.Section, page,
			r.ChunkIndex, r.Text, r.SourceFile, string(metadataJSON), float32SliceToBytes(vectors[i]),
			vectorindex.Norm(vectors[i]), toNanos(r.CreatedAt)); err != nil {
			return nil, fmt.Errorf("%w: upserting %s: %w", domain.ErrIndexUnavailable, r.ContentID, err)
		}
		ids[i] = r.ContentID
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing upsert: %w", domain.ErrIndexUnavailable, err)
	}
	return ids, nil
}

// Search loads the filtered candidates and scores them in Go.
// instr() matches strings.Contains: case-sensitive, byte-wise.
func (x *VectorIndex) Search(
	ctx context.Context, query []float32, filter domain.VectorFilter, limit int, threshold float64,
) ([]domain.RetrievalMatch, error) {
	dims, err := x.dimensions(ctx)
	if err != nil {
		return nil, err
	}
	if dims != 0 && len(query) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d", domain.ErrIndexUnavailable, len(query), dims)
	}

	sqlQuery := `
		SELECT content_id, book_id, title, section, page_number, chunk_index, text,
			source_file, metadata, embedding, norm, created_at
		FROM vectors WHERE collection = ? AND book_id = ?`
	args := []any{x.collection, filter.BookID}
	if filter.TextContains != "" {
		sqlQuery += " AND instr(text, ?) > 0"
		args = append(args, filter.TextContains)
	}

	rows, err := x.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying vectors: %w", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	qNorm := vectorindex.Norm(query)
	matches := make([]domain.RetrievalMatch, 0)
	for rows.Next() {
		var r domain.ContentRecord
		var page sql.NullInt64
		var metadataJSON string
		var blob []byte
		var norm float64
		var createdAt int64
		if err := rows.Scan(&r.ContentID, &r.BookID, &r.Title, &r.Section, &page, &r.ChunkIndex,
			&r.Text, &r.SourceFile, &metadataJSON, &blob, &norm, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scanning vector: %w", domain.ErrIndexUnavailable, err)
		}

		score := vectorindex.Cosine(query, qNorm, bytesToFloat32Slice(blob), norm)
		if score < threshold {
			continue
		}

		if page.Valid {
			p := int(page.Int64)
			r.PageNumber = &p
		}
		if metadataJSON != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON), &r.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling metadata: %w", err)
			}
		}
		r.CreatedAt = fromNanos(createdAt)
		matches = append(matches, vectorindex.ToMatch(&r, score))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating vectors: %w", domain.ErrIndexUnavailable, err)
	}
	return vectorindex.TopK(matches, limit), nil
}

// DeleteStale removes a book's records whose chunk index is keep or higher.
func (x *VectorIndex) DeleteStale(ctx context.Context, bookID string, keep int) error {
	_, err := x.store.db.ExecContext(ctx,
		"DELETE FROM vectors WHERE collection = ? AND book_id = ? AND chunk_index >= ?", x.collection, bookID, keep)
	if err != nil {
		return fmt.Errorf("%w: deleting stale vectors: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Ping checks the database is usable.
func (x *VectorIndex) Ping(ctx context.Context) error {
	if err := x.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the database.
func (x *VectorIndex) Close() error {
	return nil
}
