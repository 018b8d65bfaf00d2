package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for _, c := range []lipgloss.Color{
		theme.Primary, theme.Secondary, theme.Foreground, theme.Muted,
		theme.Success, theme.Warning, theme.Error, theme.Border,
	} {
		assert.NotEmpty(t, string(c))
	}
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[lipgloss.Color]bool)
	for _, c := range []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error} {
		assert.False(t, seen[c], "duplicate accent %s", c)
		seen[c] = true
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)
	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestStyles_Score(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Success.GetForeground(), s.Score(0.9).GetForeground())
	assert.Equal(t, s.Success.GetForeground(), s.Score(0.75).GetForeground())
	assert.Equal(t, s.Warning.GetForeground(), s.Score(0.6).GetForeground())
	assert.Equal(t, s.Muted.GetForeground(), s.Score(0.2).GetForeground())
}

func TestStyles_AnswerHasLeftRule(t *testing.T) {
	s := DefaultStyles()
	assert.True(t, s.Answer.GetBorderLeft())
	assert.False(t, s.Answer.GetBorderTop())
}
