package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary = lipgloss.Color("#00D4FF") // Cyan
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Yellow/Orange
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorText    = lipgloss.Color("#E5E7EB") // Light gray
	colorDim     = lipgloss.Color("#4B5563") // Darker gray
)

// Header styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	budgetBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	budgetBarFilledStyle = lipgloss.NewStyle().
				Foreground(colorSuccess)

	budgetBarWarningStyle = lipgloss.NewStyle().
				Foreground(colorWarning)

	budgetBarDangerStyle = lipgloss.NewStyle().
				Foreground(colorError)
)

// Input styles
var (
	inputPromptStyle = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Bold(true)
)

// Transcript styles
var (
	userMessageStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#1E3A5F")). // Dark blue background
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)

	userMessageLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	debugLineStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	choiceEchoStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)

// Separator style
var (
	separatorStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Help bar style
var (
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)
)

// Processing spinner style
var (
	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)
)
