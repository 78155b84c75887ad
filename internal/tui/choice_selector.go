package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/lipgloss"
)

// ChoiceSelector is the input component shown while a turn is suspended on
// a budget interrupt. It offers the interrupt's option labels plus a
// free-form field for typed choices.
type ChoiceSelector struct {
	// Interrupt details
	message string
	detail  string

	// Options
	options       []string
	selectedIndex int

	// Free-form input
	textInput    textarea.Model
	inputFocused bool // true when the free-form input is focused

	// Dimensions
	width int
}

// NewChoiceSelector creates a new choice selector.
func NewChoiceSelector() *ChoiceSelector {
	ta := textarea.New()
	ta.Placeholder = "직접 입력..."
	ta.CharLimit = 200
	ta.SetWidth(60)
	ta.SetHeight(1)
	ta.MaxHeight = 2
	ta.ShowLineNumbers = false
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "  "
	})
	ta.FocusedStyle.Prompt = inputPromptStyle
	ta.BlurredStyle.Prompt = inputPromptStyle.Foreground(colorMuted)
	ta.KeyMap.InsertNewline.SetKeys("shift+enter")

	return &ChoiceSelector{
		textInput: ta,
	}
}

// SetPrompt configures the selector for a fresh interrupt. The previous
// selection and any typed input are discarded.
func (c *ChoiceSelector) SetPrompt(message, detail string, options []string) {
	c.message = message
	c.detail = detail
	c.options = append([]string(nil), options...)
	c.selectedIndex = 0
	c.textInput.Reset()
	c.inputFocused = false
	c.textInput.Blur()
}

// SetWidth sets the width of the selector.
func (c *ChoiceSelector) SetWidth(width int) {
	c.width = width
	c.textInput.SetWidth(width - 8)
}

// MoveUp moves the selection up. Moving up from the free-form input
// returns to the last option.
func (c *ChoiceSelector) MoveUp() {
	if c.inputFocused {
		c.inputFocused = false
		c.textInput.Blur()
		c.selectedIndex = len(c.options) - 1
	} else if c.selectedIndex > 0 {
		c.selectedIndex--
	}
}

// MoveDown moves the selection down. Moving down past the last option
// focuses the free-form input.
func (c *ChoiceSelector) MoveDown() {
	if c.inputFocused {
		return
	}
	if c.selectedIndex < len(c.options)-1 {
		c.selectedIndex++
	} else {
		c.inputFocused = true
		c.textInput.Focus()
	}
}

// FocusInput focuses the free-form input field.
func (c *ChoiceSelector) FocusInput() {
	c.inputFocused = true
	c.textInput.Focus()
}

// Blur unfocuses the free-form input field.
func (c *ChoiceSelector) Blur() {
	c.inputFocused = false
	c.textInput.Blur()
}

// IsInputFocused returns true if the free-form input is focused.
func (c *ChoiceSelector) IsInputFocused() bool {
	return c.inputFocused
}

// Selected returns the choice to resolve with. If the free-form input is
// focused and has content, the typed text wins; otherwise the highlighted
// option label is returned.
func (c *ChoiceSelector) Selected() string {
	if c.inputFocused {
		if value := strings.TrimSpace(c.textInput.Value()); value != "" {
			return value
		}
	}
	if c.selectedIndex >= 0 && c.selectedIndex < len(c.options) {
		return c.options[c.selectedIndex]
	}
	return ""
}

// UpdateTextInput forwards a message to the free-form textarea.
func (c *ChoiceSelector) UpdateTextInput(msg interface{}) {
	c.textInput, _ = c.textInput.Update(msg)
}

// View renders the choice selector.
func (c *ChoiceSelector) View() string {
	var b strings.Builder

	b.WriteString(choiceMessageStyle.Render("⚠️ " + c.message))
	b.WriteString("\n")
	if c.detail != "" {
		b.WriteString(choiceDetailStyle.Render(c.detail))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, opt := range c.options {
		var prefix string
		var style lipgloss.Style

		if !c.inputFocused && i == c.selectedIndex {
			prefix = choiceCursorStyle.Render("▸ ")
			style = choiceOptionSelectedStyle
		} else {
			prefix = "  "
			style = choiceOptionStyle
		}

		b.WriteString(prefix)
		b.WriteString(style.Render(opt))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	var inputLabel string
	if c.inputFocused {
		inputLabel = choiceInputLabelSelectedStyle.Render("▸ 직접 입력:")
	} else {
		inputLabel = choiceInputLabelStyle.Render("  직접 입력:")
	}
	b.WriteString(inputLabel)
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(c.textInput.View())

	return choiceBoxStyle.Width(c.width - 4).Render(b.String())
}

// Choice selector styles
var (
	choiceBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWarning).
			Padding(1, 2)

	choiceMessageStyle = lipgloss.NewStyle().
				Foreground(colorWarning).
				Bold(true)

	choiceDetailStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	choiceCursorStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	choiceOptionStyle = lipgloss.NewStyle().
				Foreground(colorText)

	choiceOptionSelectedStyle = lipgloss.NewStyle().
					Foreground(colorPrimary).
					Bold(true)

	choiceInputLabelStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	choiceInputLabelSelectedStyle = lipgloss.NewStyle().
					Foreground(colorPrimary).
					Bold(true)
)
