// Package qdrant provides a VectorIndex backed by the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Defaults for the REST client.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "book_content_chunks"
	DefaultTimeout    = 10 * time.Second

	// DefaultRequestsPerSecond throttles calls to the Qdrant server.
	DefaultRequestsPerSecond = 50
)

// Payload field names.
const (
	fieldContentID  = "content_id"
	fieldBookID     = "book_id"
	fieldTitle      = "title"
	fieldSection    = "section"
	fieldPage       = "page_number"
	fieldChunkIndex = "chunk_index"
	fieldText       = "original_text"
	fieldSourceFile = "source_file"
	fieldCreatedAt  = "created_at"
	fieldMetadata   = "metadata"
)

// pointNamespace derives stable point ids from content ids.
var pointNamespace = uuid.MustParse("6f1f7a52-3c1e-4d0b-9f43-2a8c5b7e9d10")

// errCollectionMissing marks a 404 on a collection path.
var errCollectionMissing = errors.New("collection not found")

// Config configures the Qdrant client.
type Config struct {
	URL               string
	APIKey            string
	Collection        string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Index is a minimal REST client to a Qdrant collection.
type Index struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
	limiter    *rate.Limiter
	log        *logger.Component
}

// New creates a Qdrant-backed index. No request is made until first use.
func New(cfg Config) *Index {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Index{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, int(cfg.RequestsPerSecond))),
		log:        logger.With("qdrant").With("collection", cfg.Collection),
	}
}

// PointID returns the Qdrant point id used for a content id.
func PointID(contentID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(contentID)).String()
}

// EnsureCollection creates the collection and the book_id payload index
// when the collection does not exist yet.
func (x *Index) EnsureCollection(ctx context.Context, dimensions int, distance driven.Distance) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: invalid dimensions %d", domain.ErrIndexUnavailable, dimensions)
	}

	err := x.do(ctx, http.MethodGet, x.collectionPath(""), nil, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errCollectionMissing) {
		return err
	}

	x.log.Info("Creating collection with %d dimensions", dimensions)
	create := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": string(distance),
		},
	}
	if err := x.do(ctx, http.MethodPut, x.collectionPath(""), create, nil); err != nil {
		return err
	}

	index := map[string]any{
		"field_name":   fieldBookID,
		"field_schema": "keyword",
	}
	return x.do(ctx, http.MethodPut, x.collectionPath("/index?wait=true"), index, nil)
}

// Upsert stores records under point ids derived from their content ids, so
// a repeated upsert replaces the earlier point. It returns the content ids.
func (x *Index) Upsert(ctx context.Context, records []domain.ContentRecord, vectors [][]float32) ([]string, error) {
	if len(records) != len(vectors) {
		return nil, fmt.Errorf("%w: %d records for %d vectors", domain.ErrIndexUnavailable, len(records), len(vectors))
	}

	ids := make([]string, len(records))
	points := make([]map[string]any, len(records))
	for i, r := range records {
		ids[i] = r.ContentID
		points[i] = map[string]any{
			"id":      PointID(r.ContentID),
			"vector":  vectors[i],
			"payload": payload(r),
		}
	}

	body := map[string]any{"points": points}
	if err := x.do(ctx, http.MethodPut, x.collectionPath("/points?wait=true"), body, nil); err != nil {
		return nil, err
	}
	x.log.Debug("Upserted %d points", len(points))
	return ids, nil
}

// Search runs a filtered similarity search.
func (x *Index) Search(
	ctx context.Context, query []float32, filter domain.VectorFilter, limit int, threshold float64,
) ([]domain.RetrievalMatch, error) {
	if limit <= 0 {
		limit = domain.DefaultRetrieveLimit
	}

	req := map[string]any{
		"vector":          query,
		"limit":           limit,
		"with_payload":    true,
		"score_threshold": threshold,
	}
	if f := buildFilter(filter); f != nil {
		req["filter"] = f
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := x.do(ctx, http.MethodPost, x.collectionPath("/points/search"), req, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.RetrievalMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		if r.Score < threshold {
			continue
		}
		matches = append(matches, toMatch(r.Payload, r.Score))
	}
	return matches, nil
}

// DeleteStale removes a book's points whose chunk index is keep or higher.
func (x *Index) DeleteStale(ctx context.Context, bookID string, keep int) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []any{
				matchValue(fieldBookID, bookID),
				map[string]any{"key": fieldChunkIndex, "range": map[string]any{"gte": keep}},
			},
		},
	}
	err := x.do(ctx, http.MethodPost, x.collectionPath("/points/delete?wait=true"), body, nil)
	if errors.Is(err, errCollectionMissing) {
		return nil
	}
	return err
}

// Ping checks the server answers.
func (x *Index) Ping(ctx context.Context) error {
	return x.do(ctx, http.MethodGet, "/collections", nil, nil)
}

// Close releases idle connections.
func (x *Index) Close() error {
	x.client.CloseIdleConnections()
	return nil
}

func (x *Index) collectionPath(suffix string) string {
	return "/collections/" + url.PathEscape(x.collection) + suffix
}

// do sends one JSON request, decoding the response into out when set.
func (x *Index) do(ctx context.Context, method, path string, body, out any) error {
	if err := x.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", domain.ErrIndexUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrIndexUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/collections/") {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, errCollectionMissing)
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %s: %s", domain.ErrIndexUnavailable, method, path, resp.Status,
			strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %w", domain.ErrIndexUnavailable, err)
		}
	}
	return nil
}

func buildFilter(f domain.VectorFilter) map[string]any {
	var must []any
	if f.BookID != "" {
		must = append(must, matchValue(fieldBookID, f.BookID))
	}
	if f.TextContains != "" {
		must = append(must, map[string]any{
			"key":   fieldText,
			"match": map[string]any{"text": f.TextContains},
		})
	}
	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

func matchValue(key, value string) map[string]any {
	return map[string]any{
		"key":   key,
		"match": map[string]any{"value": value},
	}
}

func payload(r domain.ContentRecord) map[string]any {
	p := map[string]any{
		fieldContentID:  r.ContentID,
		fieldBookID:     r.BookID,
		fieldTitle:      r.Title,
		fieldSection:    r.Section,
		fieldChunkIndex: r.ChunkIndex,
		fieldText:       r.Text,
		fieldSourceFile: r.SourceFile,
		fieldCreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if r.PageNumber != nil {
		p[fieldPage] = *r.PageNumber
	}
	if len(r.Metadata) > 0 {
		p[fieldMetadata] = r.Metadata
	}
	return p
}

func toMatch(p map[string]any, score float64) domain.RetrievalMatch {
	m := domain.RetrievalMatch{
		Text:  stringField(p, fieldText),
		Score: score,
		Source: domain.SourceRef{
			ContentID:  stringField(p, fieldContentID),
			Title:      stringField(p, fieldTitle),
			Section:    stringField(p, fieldSection),
			SourceFile: stringField(p, fieldSourceFile),
		},
	}
	if v, ok := p[fieldChunkIndex].(float64); ok {
		m.Source.ChunkIndex = int(v)
	}
	if v, ok := p[fieldPage].(float64); ok {
		page := int(v)
		m.Source.PageNumber = &page
	}
	if v, err := time.Parse(time.RFC3339Nano, stringField(p, fieldCreatedAt)); err == nil {
		m.Source.CreatedAt = v
	}
	if v, ok := p[fieldMetadata].(map[string]any); ok {
		m.Metadata = v
	}
	return m
}

func stringField(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}
