package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/yooncheol/bapsang/internal/agent"
)

// Update handles all incoming messages and updates the model accordingly.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Filter out OSC escape sequences (terminal color responses like
		// ]11;rgb:...). These are not actual keyboard input.
		keyStr := msg.String()
		if strings.Contains(keyStr, "rgb:") ||
			strings.HasPrefix(keyStr, "11;") ||
			strings.HasPrefix(keyStr, "]11;") ||
			(keyStr != "" && keyStr[0] == ']' && strings.Contains(keyStr, ";")) {
			return m, nil
		}
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		// Set ready immediately on first WindowSizeMsg to avoid delay
		m.ready = true

		widthChanged := m.width != msg.Width
		m.width = msg.Width
		m.height = msg.Height
		m.textArea.SetWidth(msg.Width - 4)
		m.choiceSelector.SetWidth(msg.Width)

		// Recreating the renderer can trigger terminal queries, so only
		// do it when the wrap width actually changed.
		if m.mdRenderer == nil || widthChanged {
			m.mdRenderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(msg.Width-8),
			)
		}

		// Height budget: header(1) + separators(2) + input(2) + help(1) + margins(2)
		inputHeight := 2
		viewportHeight := msg.Height - 7 - inputHeight
		if viewportHeight < 3 {
			viewportHeight = 3
		}
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = viewportHeight

		m.updateViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.turnSpinner != nil && m.turnSpinner.Tick() && m.processing {
			m.updateViewport()
		}
		if m.processing {
			// Keep the tick loop alive only while a turn is running
			return m, cmd
		}
		return m, nil

	case turnResultMsg:
		return m.handleTurnResult(msg)

	case initialPromptMsg:
		return m.handleInitialPrompt(msg)
	}

	if m.inputMode && m.pendingInterrupt == nil {
		var cmd tea.Cmd
		m.textArea, cmd = m.textArea.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	}

	// Route keys to the choice selector while an interrupt is pending
	if m.pendingInterrupt != nil && m.inputMode {
		return m.handleChoiceKey(msg)
	}

	switch msg.String() {
	case "enter":
		if m.inputMode {
			value := m.textArea.Value()

			// Trailing backslash continues on the next line
			if strings.HasSuffix(value, "\\") {
				m.textArea.SetValue(strings.TrimSuffix(value, "\\") + "\n")
				return m, nil
			}

			input := strings.TrimSpace(value)
			if input != "" {
				return m.startTurn(input)
			}
		}

	case "pgup", "pgdown":
		// Always allow page up/down for scrolling, even in input mode
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "ctrl+up":
		m.viewport.LineUp(3)
		return m, nil

	case "ctrl+down":
		m.viewport.LineDown(3)
		return m, nil

	case "up", "k", "down", "j":
		// Scroll the viewport when not typing
		if !m.inputMode {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	if m.inputMode {
		var cmd tea.Cmd
		m.textArea, cmd = m.textArea.Update(msg)
		return m, cmd
	}

	return m, nil
}

// startTurn records the user message and kicks off a turn.
func (m *Model) startTurn(input string) (tea.Model, tea.Cmd) {
	m.addEntry(entry{kind: entryUser, text: input})
	m.textArea.Reset()
	m.inputMode = false
	m.processing = true
	m.lastError = nil
	m.turnSpinner = NewAnimatedSpinner()
	m.updateViewport()

	return m, tea.Batch(m.submitTurn(input), m.spinner.Tick)
}

// handleChoiceKey handles keyboard input while the choice selector is shown.
func (m *Model) handleChoiceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		m.choiceSelector.MoveUp()
		return m, nil

	case "down":
		m.choiceSelector.MoveDown()
		return m, nil

	case "tab":
		// Tab toggles between options and free-form input
		if m.choiceSelector.IsInputFocused() {
			m.choiceSelector.Blur()
		} else {
			m.choiceSelector.FocusInput()
		}
		return m, nil

	case "enter":
		if m.choiceSelector.IsInputFocused() {
			value := m.choiceSelector.textInput.Value()
			if strings.HasSuffix(value, "\\") {
				m.choiceSelector.textInput.SetValue(strings.TrimSuffix(value, "\\") + "\n")
				return m, nil
			}
		}

		choice := m.choiceSelector.Selected()
		if choice == "" {
			return m, nil
		}

		m.addEntry(entry{kind: entryChoice, text: choice})
		m.inputMode = false
		m.processing = true
		m.lastError = nil
		m.turnSpinner = NewAnimatedSpinner()
		m.updateViewport()

		return m, tea.Batch(m.resolveChoice(choice), m.spinner.Tick)

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "ctrl+up":
		m.viewport.LineUp(3)
		return m, nil

	case "ctrl+down":
		m.viewport.LineDown(3)
		return m, nil
	}

	if m.choiceSelector.IsInputFocused() {
		m.choiceSelector.UpdateTextInput(msg)
	}

	return m, nil
}

// handleTurnResult folds a completed, suspended, or failed turn back into
// the transcript.
func (m *Model) handleTurnResult(msg turnResultMsg) (tea.Model, tea.Cmd) {
	m.processing = false
	m.inputMode = true

	if msg.err != nil {
		m.lastError = msg.err
		// An unknown choice keeps the selector up for another attempt;
		// any other resolution failure means the interrupt is gone.
		if m.pendingInterrupt != nil && !errors.Is(msg.err, agent.ErrUnknownChoice) {
			m.pendingInterrupt = nil
			m.textArea.Focus()
		}
		m.updateViewport()
		return m, nil
	}

	m.lastError = nil
	res := msg.result

	if res.Interrupt != nil {
		m.pendingInterrupt = res.Interrupt
		m.lastSpent = res.Interrupt.Actual
		if res.Interrupt.Budget > 0 {
			m.budget = res.Interrupt.Budget
		}
		m.choiceSelector.SetPrompt(res.Interrupt.Message, interruptDetail(res.Interrupt), res.Interrupt.Options)
		m.choiceSelector.SetWidth(m.width)
		m.textArea.Blur()
		m.addEntry(noticeEntry(res.Interrupt))
		m.updateViewport()
		return m, nil
	}

	m.pendingInterrupt = nil
	m.lastSpent = res.Debug.SpentEstimate
	m.addEntry(answerEntry(res))
	m.textArea.Focus()
	m.updateViewport()
	return m, nil
}

// handleInitialPrompt submits the prompt the TUI was started with.
func (m *Model) handleInitialPrompt(msg initialPromptMsg) (tea.Model, tea.Cmd) {
	return m.startTurn(msg.prompt)
}
