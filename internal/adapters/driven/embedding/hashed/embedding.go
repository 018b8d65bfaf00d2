// Package hashed provides a deterministic embedding service that needs no
// network. Vectors carry no semantic meaning; they exist so ingestion and
// retrieval can run offline and in tests.
package hashed

import (
	"context"
	"crypto/md5" //nolint:gosec // not used for security
	"math/big"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions matches text-embedding-3-small so a collection created
// offline can later be reused with the real model.
const DefaultDimensions = 1536

// ModelName is reported for vectors produced by this service.
const ModelName = "hashed-md5"

var scale = big.NewInt(1_000_000)

// EmbeddingService derives vectors from the MD5 of the text.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashed embedder. Non-positive dims use the default.
func NewEmbeddingService(dims int) *EmbeddingService {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dims}
}

// Embed returns v[i] = ((h*(i+1)) mod 1e6)/1e6*2 - 1 where h is the MD5 digest
// of text read as a big-endian integer. Every component lies in [-1, 1).
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	sum := md5.Sum([]byte(text)) //nolint:gosec // not used for security
	h := new(big.Int).SetBytes(sum[:])

	vec := make([]float32, s.dimensions)
	var prod, mod, factor big.Int
	for i := range vec {
		factor.SetInt64(int64(i + 1))
		prod.Mul(h, &factor)
		mod.Mod(&prod, scale)
		vec[i] = float32(float64(mod.Int64())/1_000_000*2 - 1)
	}
	return vec, nil
}

// EmbedBatch embeds each text in turn.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i], _ = s.Embed(ctx, t)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the model label.
func (s *EmbeddingService) ModelName() string { return ModelName }

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *EmbeddingService) Close() error { return nil }
