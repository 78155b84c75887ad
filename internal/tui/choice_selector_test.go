package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func budgetOptions() []string {
	return []string{"계속 진행", "저렴한 대안 찾기", "취소"}
}

func TestChoiceSelectorNavigation(t *testing.T) {
	c := NewChoiceSelector()
	c.SetPrompt("예산을 초과합니다.", "", budgetOptions())

	assert.Equal(t, "계속 진행", c.Selected())

	c.MoveDown()
	assert.Equal(t, "저렴한 대안 찾기", c.Selected())

	c.MoveDown()
	assert.Equal(t, "취소", c.Selected())

	// Past the last option the free-form input takes focus
	c.MoveDown()
	assert.True(t, c.IsInputFocused())

	// Empty input falls back to the highlighted option
	assert.Equal(t, "취소", c.Selected())

	// Moving up returns to the last option
	c.MoveUp()
	assert.False(t, c.IsInputFocused())
	assert.Equal(t, "취소", c.Selected())
}

func TestChoiceSelectorFreeFormWins(t *testing.T) {
	c := NewChoiceSelector()
	c.SetPrompt("예산을 초과합니다.", "", budgetOptions())

	c.FocusInput()
	c.textInput.SetValue("  계속  ")

	assert.Equal(t, "계속", c.Selected())
}

func TestChoiceSelectorSetPromptResets(t *testing.T) {
	c := NewChoiceSelector()
	c.SetPrompt("첫 번째", "", budgetOptions())
	c.MoveDown()
	c.FocusInput()
	c.textInput.SetValue("무시할 입력")

	c.SetPrompt("두 번째", "예산 20,000원", budgetOptions())

	require.False(t, c.IsInputFocused())
	assert.Equal(t, "계속 진행", c.Selected())
	assert.Empty(t, c.textInput.Value())
}

func TestChoiceSelectorNoOptions(t *testing.T) {
	c := NewChoiceSelector()
	assert.Empty(t, c.Selected())
}
