package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too short after trim", "  ab  ", true},
		{"minimum", "abc", false},
		{"normal", "What is a robot?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSelection_Boundary(t *testing.T) {
	assert.NoError(t, ValidateSelection(strings.Repeat("a", 5000)))

	err := ValidateSelection(strings.Repeat("a", 5001))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Selected text too long. Maximum 5000 characters allowed, got 5001", err.Error())
}

func TestValidateSelection_CountsCharactersNotBytes(t *testing.T) {
	// 5000 two-byte runes is 10000 bytes but still within the limit.
	assert.NoError(t, ValidateSelection(strings.Repeat("é", 5000)))
}

func TestValidateSelection_Empty(t *testing.T) {
	assert.ErrorIs(t, ValidateSelection(""), ErrValidation)
	assert.ErrorIs(t, ValidateSelection(" \n\t "), ErrValidation)
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		ctxType  ContextType
		selected string
		wantErr  string
	}{
		{"empty", "", ContextFullBook, "", "Question cannot be empty"},
		{"too short", "why?", ContextFullBook, "", "at least 5"},
		{"too long", strings.Repeat("q", 2001), ContextFullBook, "", "no more than 2000"},
		{"bad context", "What is ROS?", ContextType("chapter"), "", "Context type"},
		{"selection missing", "What is ROS?", ContextSelection, "", "cannot be empty"},
		{"selection too long", "What is ROS?", ContextSelection, strings.Repeat("x", 5001), "got 5001"},
		{"full book ok", "What is ROS?", ContextFullBook, "", ""},
		{"max length ok", strings.Repeat("q", 2000), ContextFullBook, "", ""},
		{"selection ok", "Explain this", ContextSelection, "Robots sense and act.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestion(tt.question, tt.ctxType, tt.selected)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateBookID(t *testing.T) {
	assert.NoError(t, ValidateBookID("physical-ai_101"))
	assert.Error(t, ValidateBookID(""))
	assert.Error(t, ValidateBookID("ab"))
	assert.Error(t, ValidateBookID(strings.Repeat("b", 101)))
	assert.Error(t, ValidateBookID("book id"))
	assert.Error(t, ValidateBookID("book/1"))
}

func TestValidateSessionToken(t *testing.T) {
	assert.NoError(t, ValidateSessionToken("sess_0123456789abcdef"))
	assert.NoError(t, ValidateSessionToken("user.token-1_x"))
	assert.Error(t, ValidateSessionToken("short"))
	assert.Error(t, ValidateSessionToken(strings.Repeat("t", 256)))
	assert.Error(t, ValidateSessionToken("has spaces in it"))
}

func TestValidateIngestRequest_RequiredFields(t *testing.T) {
	valid := IngestRequest{BookID: "b1", Title: "Book", Content: "Some content."}
	assert.NoError(t, ValidateIngestRequest(valid))

	missing := []struct {
		field string
		req   IngestRequest
	}{
		{"book_id", IngestRequest{Title: "Book", Content: "c"}},
		{"title", IngestRequest{BookID: "b1", Content: "c"}},
		{"content", IngestRequest{BookID: "b1", Title: "Book"}},
	}
	for _, m := range missing {
		t.Run(m.field, func(t *testing.T) {
			err := ValidateIngestRequest(m.req)
			require.Error(t, err)
			assert.Equal(t, "Missing required field: "+m.field, err.Error())
		})
	}
}

func TestValidateIngestData_Bounds(t *testing.T) {
	base := IngestRequest{BookID: "book-1", Title: "Book", Content: "Long enough content."}
	assert.NoError(t, ValidateIngestData(base))

	short := base
	short.Content = "tiny"
	assert.ErrorContains(t, ValidateIngestData(short), "too short")

	longTitle := base
	longTitle.Title = strings.Repeat("t", 501)
	assert.ErrorContains(t, ValidateIngestData(longTitle), "Title")

	longAuthor := base
	longAuthor.Author = strings.Repeat("a", 251)
	assert.ErrorContains(t, ValidateIngestData(longAuthor), "Author")

	badID := base
	badID.BookID = "b1"
	assert.ErrorContains(t, ValidateIngestData(badID), "at least 3")
}
