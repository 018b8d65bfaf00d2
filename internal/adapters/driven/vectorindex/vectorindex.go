// Package vectorindex holds the similarity helpers shared by the
// in-process vector index backends.
package vectorindex

import (
	"math"
	"sort"
	"strings"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b given their norms.
// Zero vectors score 0.
func Cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}

// Accepts reports whether a record passes the filter.
func Accepts(r *domain.ContentRecord, f domain.VectorFilter) bool {
	if f.BookID != "" && r.BookID != f.BookID {
		return false
	}
	if f.TextContains != "" && !strings.Contains(r.Text, f.TextContains) {
		return false
	}
	return true
}

// ToMatch converts a stored record and its score into a retrieval match.
func ToMatch(r *domain.ContentRecord, score float64) domain.RetrievalMatch {
	return domain.RetrievalMatch{
		Text:  r.Text,
		Score: score,
		Source: domain.SourceRef{
			ContentID:  r.ContentID,
			Title:      r.Title,
			Section:    r.Section,
			PageNumber: r.PageNumber,
			ChunkIndex: r.ChunkIndex,
			SourceFile: r.SourceFile,
			CreatedAt:  r.CreatedAt,
		},
		Metadata: r.Metadata,
	}
}

// TopK orders matches by descending score, breaking ties by content id,
// and keeps at most limit of them.
func TopK(matches []domain.RetrievalMatch, limit int) []domain.RetrievalMatch {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Source.ContentID < matches[j].Source.ContentID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
