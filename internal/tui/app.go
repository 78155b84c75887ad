package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Config contains configuration for the chat TUI.
type Config struct {
	// Engine drives the turns. Required.
	Engine Turner

	// SessionID for the conversation. A fresh one is generated when empty.
	SessionID string

	// UserID owns long-term memory. Defaults to the session ID.
	UserID string

	// Budget is the session spending ceiling in KRW. 0 disables it.
	Budget int64

	// ModelName is shown in the header.
	ModelName string

	// InitialPrompt, when set, is submitted as the first turn on startup.
	InitialPrompt string
}

// App manages the TUI application lifecycle.
type App struct {
	model *Model
}

// NewApp creates a new chat application over the turn engine.
func NewApp(cfg Config) (*App, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("tui: engine is required")
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	model := NewModel(cfg)
	return &App{model: &model}, nil
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.model.ctx = ctx

	program := tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat ui: %w", err)
	}
	return nil
}
