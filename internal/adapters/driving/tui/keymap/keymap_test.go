package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name string
		key  string
		want bool
		got  func() bool
	}{
		{"q quits", "q", true, func() bool { return Matches("q", km.Quit) }},
		{"ctrl+c quits", "ctrl+c", true, func() bool { return Matches("ctrl+c", km.Quit) }},
		{"enter asks", "enter", true, func() bool { return Matches("enter", km.Ask) }},
		{"n starts new question", "n", true, func() bool { return Matches("n", km.NewQuestion) }},
		{"ctrl+s toggles selection", "ctrl+s", true, func() bool { return Matches("ctrl+s", km.ToggleSelection) }},
		{"tab switches focus", "tab", true, func() bool { return Matches("tab", km.SwitchFocus) }},
		{"k is up", "k", true, func() bool { return Matches("k", km.Up) }},
		{"j is down", "j", true, func() bool { return Matches("j", km.Down) }},
		{"j is not up", "j", false, func() bool { return Matches("j", km.Up) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got())
		})
	}
}

func TestKeyMap_HelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)
	assert.Equal(t, "new question", km.AnswerHelp()[0].Help().Desc)

	total := 0
	for _, row := range km.FullHelp() {
		total += len(row)
	}
	assert.Equal(t, 10, total)
}
