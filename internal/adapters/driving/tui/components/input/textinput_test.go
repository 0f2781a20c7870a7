package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewField(t *testing.T) {
	f := NewField(nil, "Subject", "dungeon or quest name")

	require.NotNil(t, f)
	assert.False(t, f.Focused())
	assert.Empty(t, f.Value())
	assert.Equal(t, 50, f.Width())
}

func TestField_FocusAndType(t *testing.T) {
	f := NewField(nil, "Query", "")
	f.Focus()

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("boss")})

	assert.True(t, f.Focused())
	assert.Equal(t, "boss", f.Value())
}

func TestField_BlurredIgnoresKeys(t *testing.T) {
	f := NewField(nil, "Query", "")

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("boss")})

	assert.Empty(t, f.Value())
}

func TestField_SetValueAndReset(t *testing.T) {
	f := NewField(nil, "Query", "")

	f.SetValue("salle 3")
	assert.Equal(t, "salle 3", f.Value())

	f.Reset()
	assert.Empty(t, f.Value())
}

func TestField_SetWidth(t *testing.T) {
	f := NewField(nil, "Query", "")

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())

	f.SetWidth(10)
	assert.Equal(t, 10, f.Width())
}

func TestField_ViewShowsLabel(t *testing.T) {
	f := NewField(nil, "Subject", "")

	assert.Contains(t, f.View(), "Subject:")
}
