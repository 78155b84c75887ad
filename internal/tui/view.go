package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yooncheol/bapsang/internal/tools"
)

// View renders the entire TUI.
func (m *Model) View() string {
	if m.quitting {
		return "👋 종료합니다.\n"
	}

	if !m.ready {
		return "초기화 중...\n"
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderSeparator())
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.lastError != nil {
		b.WriteString(m.renderError())
		b.WriteString("\n")
	}

	b.WriteString(m.renderSeparator())
	b.WriteString("\n")

	b.WriteString(m.renderInput())

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

// renderHeader renders the title, session line, and budget usage bar.
func (m *Model) renderHeader() string {
	title := titleStyle.Render("🥘 BAPSANG")

	budgetBar := m.renderBudgetBar()

	session := truncateID(m.sessionID, 8)
	if m.modelName != "" {
		session = fmt.Sprintf("%s · %s", session, m.modelName)
	}
	sessionInfo := lipgloss.NewStyle().
		Foreground(colorMuted).
		Render(fmt.Sprintf("세션: %s", session))

	titleWidth := lipgloss.Width(title)
	barWidth := lipgloss.Width(budgetBar)
	sessionWidth := lipgloss.Width(sessionInfo)
	spacing := m.width - titleWidth - barWidth - sessionWidth - 4

	if spacing < 0 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s%s%s",
		title,
		strings.Repeat(" ", spacing/2),
		sessionInfo,
		strings.Repeat(" ", spacing-spacing/2),
		budgetBar,
	)
}

// renderBudgetBar renders the last turn's estimated spend against the
// session budget. Sessions without a ceiling get no bar.
func (m *Model) renderBudgetBar() string {
	if m.budget <= 0 {
		return ""
	}

	percentage := float64(m.lastSpent) / float64(m.budget) * 100
	barWidth := 12
	filledWidth := int(float64(barWidth) * percentage / 100)

	if filledWidth > barWidth {
		filledWidth = barWidth
	}

	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", barWidth-filledWidth)

	var barStyle lipgloss.Style
	switch {
	case percentage >= 100:
		barStyle = budgetBarDangerStyle
	case percentage >= 70:
		barStyle = budgetBarWarningStyle
	default:
		barStyle = budgetBarFilledStyle
	}

	return fmt.Sprintf("[%s%s] %s/%s원",
		barStyle.Render(filled),
		budgetBarStyle.Render(empty),
		tools.FormatWon(m.lastSpent),
		tools.FormatWon(m.budget),
	)
}

// renderSeparator renders a horizontal separator line.
func (m *Model) renderSeparator() string {
	return separatorStyle.Render(strings.Repeat("─", m.width-2))
}

// renderInput renders the input area.
func (m *Model) renderInput() string {
	if m.inputMode {
		if m.pendingInterrupt != nil {
			return m.choiceSelector.View()
		}
		return m.textArea.View()
	}
	return lipgloss.NewStyle().
		Foreground(colorMuted).
		Italic(true).
		Render("답변 준비 중... (ctrl+c 종료)")
}

// renderError renders an error message.
func (m *Model) renderError() string {
	return lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true).
		Render(fmt.Sprintf("오류: %v", m.lastError))
}

// renderHelp renders the help bar at the bottom.
func (m *Model) renderHelp() string {
	var keys []struct {
		key  string
		desc string
	}

	if m.pendingInterrupt != nil {
		keys = []struct {
			key  string
			desc string
		}{
			{"up/down", "선택"},
			{"tab", "직접 입력"},
			{"enter", "확인"},
			{"ctrl+c", "종료"},
		}
	} else {
		keys = []struct {
			key  string
			desc string
		}{
			{"enter", "전송"},
			{"shift+enter", "줄바꿈"},
			{"pgup/pgdn", "스크롤"},
			{"ctrl+c", "종료"},
		}
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", helpKeyStyle.Render(k.key), k.desc))
	}

	return helpStyle.Render(strings.Join(parts, " • "))
}

// truncateID truncates an identifier to maxLen characters.
func truncateID(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
