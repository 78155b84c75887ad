package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yooncheol/bapsang/internal/agent"
	"github.com/yooncheol/bapsang/internal/audit"
	"github.com/yooncheol/bapsang/internal/config"
	"github.com/yooncheol/bapsang/internal/logging"
	"github.com/yooncheol/bapsang/internal/memory"
	"github.com/yooncheol/bapsang/internal/model"
	"github.com/yooncheol/bapsang/internal/retrieval"
	"github.com/yooncheol/bapsang/internal/session"
	"github.com/yooncheol/bapsang/internal/tools"
	"github.com/yooncheol/bapsang/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the recipe agent",
	Long: `Start an interactive terminal chat with the recipe agent.

The chat runs the agent in-process, so no server is needed. Dietary
preferences mentioned in conversation are remembered across turns, and
turns whose estimated shopping cost exceeds the budget pause for a
choice before continuing.

Examples:
  # Chat with built-in defaults (mock model, 20,000 KRW budget)
  bapsang chat

  # Raise the budget and keep memory under a stable user ID
  bapsang chat --budget 35000 --user yooncheol

  # Script the mock model and send an opening message
  bapsang chat --scenario scenarios/budget.yaml --prompt "스테이크 만들고 싶어"
`,
	RunE: runChat,
}

var (
	chatUser     string
	chatSession  string
	chatBudget   int64
	chatScenario string
	chatAuditLog string
	chatPrompt   string
)

func init() {
	chatCmd.Flags().StringVar(&chatUser, "user", "local",
		"User ID that owns long-term dietary memory")
	chatCmd.Flags().StringVar(&chatSession, "session", "",
		"Session ID to resume (a new one is generated when empty)")
	chatCmd.Flags().Int64Var(&chatBudget, "budget", 0,
		"Ingredient budget in KRW for this session (0 = config default)")
	chatCmd.Flags().StringVar(&chatScenario, "scenario", "",
		"Path to a scenario YAML that scripts the mock model")
	chatCmd.Flags().StringVar(&chatAuditLog, "audit-log", "",
		"Path to write the turn audit log (JSONL format). If empty, audit logging is disabled.")
	chatCmd.Flags().StringVar(&chatPrompt, "prompt", "",
		"Initial message to send to the agent (useful for scripting)")
}

func runChat(cmd *cobra.Command, args []string) error {
	// Logging goes to stderr, which would tear the alt screen, so the
	// chat defaults to errors only unless the user asks for more.
	levelFlags := logLevelFlags
	if !cmd.Flags().Changed("log-level") {
		levelFlags = []string{"error"}
	}
	if err := setupLog(levelFlags); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	var cfg *config.Config
	var err error
	if configFilePath != "" {
		cfg, err = config.Load(configFilePath)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}
	if cmd.Flags().Changed("scenario") {
		cfg.Model.ScenarioPath = chatScenario
	}
	if cmd.Flags().Changed("audit-log") {
		cfg.Audit.Path = chatAuditLog
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	budget := chatBudget
	if budget <= 0 {
		budget = cfg.Agent.DefaultBudgetKRW
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	llm, err := model.New(cfg.Model)
	if err != nil {
		return fmt.Errorf("failed to initialize model: %w", err)
	}

	retriever, err := retrieval.New(cfg.Retrieval, logging.GetLogger("retrieval"))
	if err != nil {
		return fmt.Errorf("failed to initialize retrieval: %w", err)
	}

	facts, err := memory.New(cfg.Memory)
	if err != nil {
		return fmt.Errorf("failed to initialize memory: %w", err)
	}
	defer func() { _ = facts.Close() }()

	auditLogger := audit.NewNopLogger()
	if cfg.Audit.Path != "" {
		auditLogger, err = audit.NewLogger(cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize audit log: %w", err)
		}
		defer func() { _ = auditLogger.Close() }()
	}

	engine, err := agent.New(agent.Options{
		Config:    cfg.Agent,
		Model:     llm,
		Retriever: retriever,
		Registry:  tools.NewMockRegistry(),
		Sessions:  session.NewStore(),
		Facts:     facts,
		Audit:     auditLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	modelName := cfg.Model.Model
	if llm.Name() == "mock" {
		modelName = "mock"
	}

	app, err := tui.NewApp(tui.Config{
		Engine:        engine,
		SessionID:     chatSession,
		UserID:        chatUser,
		Budget:        budget,
		ModelName:     modelName,
		InitialPrompt: chatPrompt,
	})
	if err != nil {
		return err
	}

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	fmt.Println("👋 종료합니다.")
	return nil
}
