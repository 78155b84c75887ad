package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/yooncheol/bapsang/internal/agent"
	"github.com/yooncheol/bapsang/internal/apiserver"
	"github.com/yooncheol/bapsang/internal/audit"
	"github.com/yooncheol/bapsang/internal/config"
	"github.com/yooncheol/bapsang/internal/lifecycle"
	"github.com/yooncheol/bapsang/internal/logging"
	bapsangmcp "github.com/yooncheol/bapsang/internal/mcp"
	"github.com/yooncheol/bapsang/internal/memory"
	"github.com/yooncheol/bapsang/internal/metrics"
	"github.com/yooncheol/bapsang/internal/model"
	"github.com/yooncheol/bapsang/internal/retrieval"
	"github.com/yooncheol/bapsang/internal/session"
	"github.com/yooncheol/bapsang/internal/tools"
	"github.com/yooncheol/bapsang/internal/tracing"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the recipe agent as an HTTP and MCP server",
	Long: `Run the recipe agent behind an HTTP API with an MCP endpoint.

The server exposes:
  POST   /v1/sessions/{id}/turns      submit a conversation turn
  POST   /v1/sessions/{id}/interrupt  resolve a pending budget interrupt
  GET    /v1/sessions/{id}/history    list the session's exchanges
  DELETE /v1/sessions/{id}            clear a session
  GET    /v1/users/{id}/memory        inspect long-term dietary facts
  GET    /healthz, /readyz            liveness and readiness
  GET    /metrics                     Prometheus metrics
  /v1/mcp                             MCP streamable HTTP transport

Examples:
  # Run with built-in defaults (mock model, in-memory stores)
  bapsang server

  # Run from a config file with a scripted scenario
  bapsang server --config bapsang.yaml --scenario scenarios/budget.yaml

  # Also serve MCP over stdio for a local MCP client
  bapsang server --stdio
`,
	Run: runServer,
}

var (
	apiPort            int
	scenarioPath       string
	auditLogPath       string
	stdioEnabled       bool
	watchConfig        bool
	tracingEnabled     bool
	tracingEndpoint    string
	tracingTLSCAPath   string
	tracingInsecureTLS bool
)

func init() {
	serverCmd.Flags().IntVar(&apiPort, "api-port", 8080,
		"Port for the HTTP API server")
	serverCmd.Flags().StringVar(&scenarioPath, "scenario", "",
		"Path to a scenario YAML that scripts the mock model")
	serverCmd.Flags().StringVar(&auditLogPath, "audit-log", "",
		"Path to write the turn audit log (JSONL format). If empty, audit logging is disabled.")
	serverCmd.Flags().BoolVar(&stdioEnabled, "stdio", false,
		"Also serve MCP over stdio alongside the HTTP transport")
	serverCmd.Flags().BoolVar(&watchConfig, "watch-config", false,
		"Watch the config file and hot-reload the mock scenario on change")
	serverCmd.Flags().BoolVar(&tracingEnabled, "tracing-enabled", false,
		"Enable OpenTelemetry tracing")
	serverCmd.Flags().StringVar(&tracingEndpoint, "tracing-endpoint", "",
		"OTLP gRPC endpoint for trace export (host:port)")
	serverCmd.Flags().StringVar(&tracingTLSCAPath, "tracing-tls-ca", "",
		"CA certificate for TLS verification of the OTLP endpoint")
	serverCmd.Flags().BoolVar(&tracingInsecureTLS, "tracing-insecure-tls", false,
		"Skip TLS certificate verification for the OTLP endpoint")
}

// loadConfig builds the effective config: the --config file (or built-in
// defaults) with explicitly set CLI flags layered on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFilePath != "" {
		cfg, err = config.Load(configFilePath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	flags := cmd.Flags()
	if flags.Changed("api-port") {
		cfg.Server.APIPort = apiPort
	}
	if flags.Changed("scenario") {
		cfg.Model.ScenarioPath = scenarioPath
	}
	if flags.Changed("audit-log") {
		cfg.Audit.Path = auditLogPath
	}
	if flags.Changed("tracing-enabled") {
		cfg.Tracing.Enabled = tracingEnabled
	}
	if flags.Changed("tracing-endpoint") {
		cfg.Tracing.Endpoint = tracingEndpoint
	}
	if flags.Changed("tracing-tls-ca") {
		cfg.Tracing.TLSCAPath = tracingTLSCAPath
	}
	if flags.Changed("tracing-insecure-tls") {
		cfg.Tracing.TLSInsecure = tracingInsecureTLS
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogFromConfig initializes logging, letting CLI flags override the
// config file's log_level.
func setupLogFromConfig(cmd *cobra.Command, cfg *config.Config) error {
	flags := logLevelFlags
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		flags = []string{cfg.LogLevel}
	}
	return setupLog(flags)
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	HandleError(err, "Configuration error")

	HandleError(setupLogFromConfig(cmd, cfg), "Logging setup error")

	logger := logging.GetLogger("main")
	logger.Info("Starting bapsang server v%s", Version)

	manager := lifecycle.NewManager()

	// A broken trace exporter must not keep the agent down.
	tracingProvider, err := tracing.NewProvider(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		TLSCAPath:   cfg.Tracing.TLSCAPath,
		TLSInsecure: cfg.Tracing.TLSInsecure,
	})
	if err != nil {
		logger.Warn("Tracing unavailable, continuing without it: %v", err)
		tracingProvider = nil
	}
	if tracingProvider != nil {
		if err := manager.Register(tracingProvider); err != nil {
			HandleError(err, "Tracing registration error")
		}
	}

	llm, err := model.New(cfg.Model)
	HandleError(err, "Model initialization error")
	logger.Info("Model backend: %s", llm.Name())

	retriever, err := retrieval.New(cfg.Retrieval, logging.GetLogger("retrieval"))
	HandleError(err, "Retrieval initialization error")

	facts, err := memory.New(cfg.Memory)
	HandleError(err, "Memory initialization error")

	auditLogger := audit.NewNopLogger()
	if cfg.Audit.Path != "" {
		auditLogger, err = audit.NewLogger(cfg.Audit.Path)
		HandleError(err, "Audit log initialization error")
		logger.Info("Audit log: %s", cfg.Audit.Path)
	}

	registry := prometheus.NewRegistry()

	engine, err := agent.New(agent.Options{
		Config:    cfg.Agent,
		Model:     llm,
		Retriever: retriever,
		Registry:  tools.NewMockRegistry(),
		Sessions:  session.NewStore(),
		Facts:     facts,
		Audit:     auditLogger,
		Metrics:   metrics.New(registry),
	})
	HandleError(err, "Engine initialization error")

	mcpSrv, err := bapsangmcp.NewBapsangServer(engine, Version)
	HandleError(err, "MCP server initialization error")

	apiComponent, err := apiserver.New(apiserver.Options{
		Port:     cfg.Server.APIPort,
		Engine:   engine,
		Gatherer: registry,
		MCP:      mcpSrv.GetMCPServer(),
	})
	HandleError(err, "API server initialization error")

	if err := manager.Register(apiComponent); err != nil {
		HandleError(err, "API server registration error")
	}

	// Scenario hot reload only applies to the mock backend: real backends
	// have nothing to swap.
	var configWatcher *config.Watcher
	if watchConfig && configFilePath != "" {
		mock, isMock := llm.(*model.MockModel)
		if !isMock {
			logger.Warn("--watch-config only reloads mock scenarios, model backend is %s", llm.Name())
		} else {
			configWatcher, err = config.NewWatcher(config.WatcherConfig{FilePath: configFilePath},
				func(next *config.Config) error {
					if next.Model.ScenarioPath == "" {
						return nil
					}
					sc, err := model.LoadScenario(next.Model.ScenarioPath)
					if err != nil {
						return err
					}
					mock.SwapScenario(sc)
					logger.Info("Scenario reloaded: %s", sc.Name)
					return nil
				})
			HandleError(err, "Config watcher initialization error")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := manager.Start(ctx); err != nil {
		cancel()
		HandleError(err, "Startup error")
	}

	// The watcher is not a lifecycle component (its Stop takes no
	// context), so it is started and stopped around the manager.
	if configWatcher != nil {
		if err := configWatcher.Start(ctx); err != nil {
			logger.Warn("Config watcher failed to start: %v", err)
			configWatcher = nil
		}
	}

	// Start stdio MCP transport if requested
	if stdioEnabled {
		logger.Info("Starting stdio MCP transport alongside HTTP")
		go func() {
			if err := server.ServeStdio(mcpSrv.GetMCPServer()); err != nil {
				logger.Error("Stdio transport error: %v", err)
			}
		}()
	}

	logger.Info("Bapsang is ready on port %d", cfg.Server.APIPort)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received, gracefully shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if configWatcher != nil {
		if err := configWatcher.Stop(); err != nil {
			logger.Error("Config watcher shutdown error: %v", err)
		}
	}

	if err := manager.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}

	if err := facts.Close(); err != nil {
		logger.Error("Failed to close fact store: %v", err)
	}
	if err := auditLogger.Close(); err != nil {
		logger.Error("Failed to close audit log: %v", err)
	}

	logger.Info("Shutdown complete")
}
