package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

func TestCosine(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	c := []float32{2, 0}

	assert.InDelta(t, 0.0, Cosine(a, Norm(a), b, Norm(b)), 1e-9)
	assert.InDelta(t, 1.0, Cosine(a, Norm(a), c, Norm(c)), 1e-9)
	assert.Zero(t, Cosine(a, Norm(a), []float32{0, 0}, 0))
	assert.Zero(t, Cosine(a, Norm(a), []float32{1, 0, 0}, 1))
}

func TestAccepts(t *testing.T) {
	r := &domain.ContentRecord{BookID: "b1", Text: "The whale surfaced near the ship."}

	assert.True(t, Accepts(r, domain.VectorFilter{BookID: "b1"}))
	assert.True(t, Accepts(r, domain.VectorFilter{BookID: "b1", TextContains: "whale surfaced"}))
	assert.False(t, Accepts(r, domain.VectorFilter{BookID: "b2"}))
	assert.False(t, Accepts(r, domain.VectorFilter{BookID: "b1", TextContains: "submarine"}))
}

func TestTopK(t *testing.T) {
	matches := []domain.RetrievalMatch{
		{Score: 0.2, Source: domain.SourceRef{ContentID: "c"}},
		{Score: 0.9, Source: domain.SourceRef{ContentID: "b"}},
		{Score: 0.9, Source: domain.SourceRef{ContentID: "a"}},
		{Score: 0.5, Source: domain.SourceRef{ContentID: "d"}},
	}

	got := TopK(matches, 3)

	assert.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Source.ContentID)
	assert.Equal(t, "b", got[1].Source.ContentID)
	assert.Equal(t, "d", got[2].Source.ContentID)
}
