package keyevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in        string
		combo     Combo
		name      string
		textInput bool
	}{
		{"BACK_SPACE", Backspace, "BACK_SPACE", false},
		{"delete", Delete, "DELETE", false},
		{"ENTER", Enter, "ENTER", false},
		{"TAB", Tab, "TAB", false},
		{"SHIFT+TAB", ShiftTab, "SHIFT+TAB", false},
		{"ctrl+shift+tab", Other, "CTRL+SHIFT+TAB", false},
		{"a", Other, "a", true},
		{"CTRL+z", Other, "CTRL+z", false},
		{"SHIFT", Shift, "SHIFT", false},
		{"CTRL", Control, "CONTROL", false},
		{"+", Other, "+", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ev, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.combo, ev.Combo)
			assert.Equal(t, tt.name, ev.Name)
			assert.Equal(t, tt.textInput, ev.IsTextInput())
		})
	}
}

func TestParseModifiers(t *testing.T) {
	ev := MustParse("CMD+OPTION+x")
	assert.True(t, ev.Mods.Meta)
	assert.True(t, ev.Mods.Alt)
	assert.False(t, ev.Mods.Shift)
	assert.True(t, ev.Mods.Any())
	assert.False(t, ev.IsLoneModifier())
	assert.True(t, MustParse("META").IsLoneModifier())
	assert.True(t, MustParse("DELETE").IsDeletion())
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("BACKSPACE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Contains(t, err.Error(), "BACK_SPACE")

	_, err = Parse("HYPER+a")
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestComboString(t *testing.T) {
	assert.Equal(t, "SHIFT+TAB", ShiftTab.String())
	assert.Equal(t, "BACK_SPACE", Backspace.String())
}

func TestNamedKeysParse(t *testing.T) {
	for _, name := range NamedKeys() {
		_, err := Parse(name)
		assert.NoError(t, err, name)
	}
}
