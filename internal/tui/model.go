package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/yooncheol/bapsang/internal/agent"
	"github.com/yooncheol/bapsang/internal/tools"
)

const (
	iconSuccess = "✓"
	iconActive  = "●"

	agentLabel = "밥상"
)

// Turner is the slice of the turn engine the chat surface drives.
type Turner interface {
	SubmitTurn(ctx context.Context, req agent.TurnRequest) (*agent.TurnResult, error)
	ResolveInterrupt(ctx context.Context, sessionID, choice string) (*agent.TurnResult, error)
}

// entryKind tags a transcript entry.
type entryKind int

const (
	entryUser entryKind = iota
	entryAnswer
	entryNotice
	entryChoice
)

// entry is one block in the transcript: a user message, a completed
// answer, a budget interrupt notice, or the echoed interrupt choice.
type entry struct {
	kind entryKind
	text string
	meta string // secondary line: debug footer or budget detail
}

// Model is the main Bubble Tea model for the chat TUI.
type Model struct {
	ctx    context.Context
	engine Turner

	// Session info
	sessionID     string
	userID        string
	modelName     string
	budget        int64
	lastSpent     int64
	initialPrompt string

	// Transcript
	entries []entry

	// UI components
	textArea       textarea.Model
	viewport       viewport.Model
	spinner        spinner.Model         // tick source
	turnSpinner    *AnimatedSpinner      // per-turn animation
	mdRenderer     *glamour.TermRenderer // markdown renderer
	choiceSelector *ChoiceSelector

	// Interrupt state; non-nil while a turn is suspended
	pendingInterrupt *agent.InterruptPrompt

	// Dimensions
	width  int
	height int

	// State
	ready      bool
	quitting   bool
	inputMode  bool
	processing bool

	// Error state
	lastError error
}

// NewModel creates a new chat model over the given engine.
func NewModel(cfg Config) Model {
	// Text area for multiline input
	ta := textarea.New()
	ta.Placeholder = "원하시는 요리나 식단을 입력하세요..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(2)
	ta.MaxHeight = 10
	ta.ShowLineNumbers = false
	// Prompt only on the first line, aligned continuation below
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "  "
	})
	ta.FocusedStyle.Prompt = inputPromptStyle
	ta.BlurredStyle.Prompt = inputPromptStyle
	// shift+enter inserts a newline, plain enter submits
	ta.KeyMap.InsertNewline.SetKeys("shift+enter")

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	vp := viewport.New(80, 20)
	vp.SetContent("")
	vp.MouseWheelEnabled = true

	mdRenderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)

	return Model{
		ctx:            context.Background(),
		engine:         cfg.Engine,
		sessionID:      cfg.SessionID,
		userID:         cfg.UserID,
		modelName:      cfg.ModelName,
		budget:         cfg.Budget,
		initialPrompt:  cfg.InitialPrompt,
		textArea:       ta,
		viewport:       vp,
		spinner:        s,
		mdRenderer:     mdRenderer,
		choiceSelector: NewChoiceSelector(),
		inputMode:      true,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	// Request window size immediately to avoid delay
	if m.initialPrompt != "" {
		prompt := m.initialPrompt
		return tea.Batch(tea.WindowSize(), func() tea.Msg {
			return initialPromptMsg{prompt: prompt}
		})
	}
	return tea.WindowSize()
}

// submitTurn runs one turn against the engine off the update loop.
func (m *Model) submitTurn(input string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.engine.SubmitTurn(m.ctx, agent.TurnRequest{
			SessionID: m.sessionID,
			UserID:    m.userID,
			Text:      input,
			Budget:    m.budget,
		})
		return turnResultMsg{result: res, err: err}
	}
}

// resolveChoice resolves the pending budget interrupt.
func (m *Model) resolveChoice(choice string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.engine.ResolveInterrupt(m.ctx, m.sessionID, choice)
		return turnResultMsg{result: res, err: err}
	}
}

// addEntry appends a transcript entry.
func (m *Model) addEntry(e entry) {
	m.entries = append(m.entries, e)
}

// answerEntry builds the transcript entry for a completed turn.
func answerEntry(res *agent.TurnResult) entry {
	return entry{
		kind: entryAnswer,
		text: res.Answer,
		meta: turnMeta(res),
	}
}

// noticeEntry builds the transcript entry for a raised budget interrupt.
func noticeEntry(p *agent.InterruptPrompt) entry {
	return entry{
		kind: entryNotice,
		text: p.Message,
		meta: interruptDetail(p),
	}
}

// turnMeta renders the debug footer shown under an answer. Turns that
// never reached the model (clarifications) get no footer.
func turnMeta(res *agent.TurnResult) string {
	if res.Debug.LLMCalls == 0 {
		return ""
	}
	return fmt.Sprintf("🔍 LLM 호출 %d회 | 도구 %d회 | 신뢰도 %.2f",
		res.Debug.LLMCalls, res.Debug.ToolCalls, res.Confidence)
}

// interruptDetail renders the budget numbers under an interrupt notice.
func interruptDetail(p *agent.InterruptPrompt) string {
	return fmt.Sprintf("예산 %s원 | 예상 %s원 | 초과 %s원",
		tools.FormatWon(p.Budget), tools.FormatWon(p.Actual), tools.FormatWon(p.Diff))
}

// updateViewport rebuilds the viewport content from the transcript.
func (m *Model) updateViewport() {
	var content strings.Builder

	for _, e := range m.entries {
		content.WriteString(m.renderEntry(e))
	}

	if m.processing {
		content.WriteString(iconActive)
		content.WriteString(" [")
		content.WriteString(agentLabel)
		content.WriteString("]\n  ")
		if m.turnSpinner != nil {
			content.WriteString(m.turnSpinner.View())
		} else {
			content.WriteString(m.spinner.View())
		}
		content.WriteString(" 생각 중...\n")
	}

	m.viewport.SetContent(content.String())
	// Scroll to bottom when new content is added
	m.viewport.GotoBottom()
}

// renderEntry renders one transcript entry as plain text for the viewport.
func (m *Model) renderEntry(e entry) string {
	switch e.kind {
	case entryUser:
		return m.renderUserEntry(e)
	case entryAnswer:
		return m.renderAnswerEntry(e)
	case entryNotice:
		return m.renderNoticeEntry(e)
	case entryChoice:
		return choiceEchoStyle.Render(fmt.Sprintf("[선택: %s]", e.text)) + "\n\n"
	}
	return ""
}

// renderUserEntry renders a user message.
func (m *Model) renderUserEntry(e entry) string {
	var b strings.Builder

	b.WriteString(userMessageLabelStyle.Render("You: "))

	// Wrap long lines to keep the bubble readable
	maxWidth := m.width - 10
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 100 {
		maxWidth = 100
	}

	lines := wrapText(e.text, maxWidth)
	content := strings.Join(lines, "\n     ") // Indent continuation lines
	b.WriteString(userMessageStyle.Render(content))
	b.WriteString("\n\n")

	return b.String()
}

// renderAnswerEntry renders a completed answer with its debug footer.
func (m *Model) renderAnswerEntry(e entry) string {
	var b strings.Builder

	b.WriteString(iconSuccess)
	b.WriteString(" [")
	b.WriteString(agentLabel)
	b.WriteString("]\n")
	b.WriteString(m.renderMarkdown(e.text))
	if e.meta != "" {
		b.WriteString(debugLineStyle.Render(e.meta))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}

// renderNoticeEntry renders a budget interrupt notice.
func (m *Model) renderNoticeEntry(e entry) string {
	var b strings.Builder

	b.WriteString(noticeStyle.Render("⚠️ " + e.text))
	b.WriteString("\n")
	if e.meta != "" {
		b.WriteString(debugLineStyle.Render(e.meta))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}

// renderMarkdown renders markdown content with styling.
func (m *Model) renderMarkdown(content string) string {
	if m.mdRenderer == nil {
		return content
	}

	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n") + "\n"
}

// wrapText wraps text to fit within maxWidth characters.
func wrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		maxWidth = 80
	}

	var lines []string
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	currentLine := words[0]
	for _, word := range words[1:] {
		if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	lines = append(lines, currentLine)

	return lines
}
