package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

func TestRetrievalService_Validation(t *testing.T) {
	svc := NewRetrievalService(&letterEmbedder{}, &stubIndex{})
	ctx := context.Background()

	tests := []struct {
		name  string
		req   domain.RetrievalRequest
		field string
	}{
		{"empty query", domain.RetrievalRequest{Query: "   "}, "query"},
		{"short query", domain.RetrievalRequest{Query: "hi"}, "query"},
		{"bad mode", domain.RetrievalRequest{Query: "what happened", Mode: "chapter"}, "context_type"},
		{"selection missing", domain.RetrievalRequest{Query: "what happened", Mode: domain.ContextSelection}, "selected_text"},
		{
			"selection too long",
			domain.RetrievalRequest{
				Query:        "what happened",
				Mode:         domain.ContextSelection,
				SelectedText: strings.Repeat("a", domain.MaxSelectionLength+1),
			},
			"selected_text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Retrieve(ctx, tt.req)
			require.False(t, res.IsOk())
			assert.True(t, domain.IsValidation(res.Err()))

			var verr *domain.ValidationError
			require.ErrorAs(t, res.Err(), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRetrievalService_SelectionAtLimit(t *testing.T) {
	index := &stubIndex{}
	svc := NewRetrievalService(&letterEmbedder{}, index)

	res := svc.Retrieve(context.Background(), domain.RetrievalRequest{
		Query:        "what happened",
		Mode:         domain.ContextSelection,
		SelectedText: strings.Repeat("a", domain.MaxSelectionLength),
	})
	require.True(t, res.IsOk(), "selection of exactly the limit is accepted: %v", res.Err())
	assert.Empty(t, res.Value())
}

func TestRetrievalService_FullBookDefaults(t *testing.T) {
	index := &stubIndex{matches: matchesFixture(8)}
	svc := NewRetrievalService(&letterEmbedder{}, index)
	svc.SetScoreThreshold(0.25)

	res := svc.Retrieve(context.Background(), domain.RetrievalRequest{Query: "the sea"})
	require.True(t, res.IsOk())

	matches := res.Value()
	assert.Len(t, matches, domain.DefaultRetrieveLimit)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}

	require.Len(t, index.filters, 1)
	assert.Equal(t, domain.VectorFilter{BookID: domain.DefaultBookID}, index.filters[0])
	assert.Equal(t, domain.DefaultRetrieveLimit, index.limits[0])
	assert.InDelta(t, 0.25, index.thresholds[0], 1e-9)
}

func TestRetrievalService_ConfiguredDefaultLimit(t *testing.T) {
	index := &stubIndex{matches: matchesFixture(8)}
	svc := NewRetrievalService(&letterEmbedder{}, index)
	svc.SetDefaultLimit(3)
	svc.SetDefaultLimit(0)

	res := svc.Retrieve(context.Background(), domain.RetrievalRequest{Query: "the sea"})
	require.True(t, res.IsOk())
	assert.Len(t, res.Value(), 3)
	assert.Equal(t, 3, index.limits[0])

	res = svc.Retrieve(context.Background(), domain.RetrievalRequest{Query: "the sea", Limit: 2})
	require.True(t, res.IsOk())
	assert.Equal(t, 2, index.limits[1])
}

func TestRetrievalService_NilResultIsEmpty(t *testing.T) {
	svc := NewRetrievalService(&letterEmbedder{}, &stubIndex{nilResult: true})

	res := svc.Retrieve(context.Background(), domain.RetrievalRequest{Query: "anything", BookID: "b1", Limit: 3})
	require.True(t, res.IsOk())
	assert.NotNil(t, res.Value())
	assert.Empty(t, res.Value())
}

func TestRetrievalService_EmbedFailure(t *testing.T) {
	svc := NewRetrievalService(&letterEmbedder{embedErr: errBackend}, &stubIndex{})

	res := svc.Retrieve(context.Background(), domain.RetrievalRequest{Query: "the sea"})
	require.False(t, res.IsOk())
	assert.ErrorIs(t, res.Err(), domain.ErrRetrieval)
	assert.ErrorIs(t, res.Err(), errBackend)
}

func TestRetrievalService_IndexFailure(t *testing.T) {
	index := &stubIndex{searchErr: domain.ErrIndexUnavailable}
	svc := NewRetrievalService(&letterEmbedder{}, index)

	res := svc.Retrieve(context.Background(), domain.RetrievalRequest{Query: "the sea"})
	require.False(t, res.IsOk())
	assert.ErrorIs(t, res.Err(), domain.ErrRetrieval)
	assert.ErrorIs(t, res.Err(), domain.ErrIndexUnavailable)
	assert.False(t, domain.IsValidation(res.Err()))
}

func TestRetrievalService_Selection(t *testing.T) {
	selected := "The ship left port. It sailed east."
	index := &stubIndex{matches: []domain.RetrievalMatch{
		{Text: "Unrelated passage.", Score: 0.95, Source: domain.SourceRef{ContentID: "c"}},
		{Text: "Before that day. The ship left port. It sailed east. After.", Score: 0.8,
			Source: domain.SourceRef{ContentID: "b"}},
		{Text: "The ship left port.", Score: 0.7, Source: domain.SourceRef{ContentID: "a"}},
	}}
	svc := NewRetrievalService(&letterEmbedder{}, index)

	res := svc.Retrieve(context.Background(), domain.RetrievalRequest{
		Query:        "where did it go",
		BookID:       "b1",
		Mode:         domain.ContextSelection,
		SelectedText: selected,
	})
	require.True(t, res.IsOk())

	matches := res.Value()
	require.Len(t, matches, 2)
	assert.Equal(t, "b", matches[0].Source.ContentID)
	assert.Equal(t, "a", matches[1].Source.ContentID)

	require.Len(t, index.filters, 2)
	assert.Equal(t, selected, index.filters[0].TextContains)
	assert.Equal(t, "b1", index.filters[0].BookID)
	assert.Empty(t, index.filters[1].TextContains)
	assert.Equal(t, domain.DefaultRetrieveLimit*selectionCandidateFactor, index.limits[1])
}

func TestRetrievalService_SelectionPrefixIsBounded(t *testing.T) {
	index := &stubIndex{}
	svc := NewRetrievalService(&letterEmbedder{}, index)

	selected := strings.Repeat("é", 300)
	res := svc.Retrieve(context.Background(), domain.RetrievalRequest{
		Query:        "what is this",
		Mode:         domain.ContextSelection,
		SelectedText: selected,
	})
	require.True(t, res.IsOk())
	require.NotEmpty(t, index.filters)
	assert.Equal(t, strings.Repeat("é", domain.SelectionPrefixChars), index.filters[0].TextContains)
}

func TestRetrievalService_RecordsStage(t *testing.T) {
	rec := &spyRecorder{}
	svc := NewRetrievalService(&letterEmbedder{}, &stubIndex{})
	svc.SetRecorder(rec)

	svc.Retrieve(context.Background(), domain.RetrievalRequest{Query: "the sea"})
	assert.Equal(t, []string{"retrieve"}, rec.stages)
}
