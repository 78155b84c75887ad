package config

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AgentVersion is the running agent version. Config files may set
// min_agent_version to refuse startup on older binaries.
const AgentVersion = "0.1.0"

// Config holds all configuration for the application.
//
// Example YAML structure:
//
//	schema_version: v1
//	server:
//	  api_port: 8080
//	agent:
//	  default_budget_krw: 20000
//	model:
//	  backend: mock
//	  scenario_path: scenarios/dinner.yaml
type Config struct {
	// SchemaVersion is the explicit config schema version (e.g., "v1")
	SchemaVersion string `yaml:"schema_version"`

	// MinAgentVersion optionally sets the minimum agent version this
	// config file is written for (e.g., "0.1.0")
	MinAgentVersion string `yaml:"min_agent_version"`

	Server    ServerConfig    `yaml:"server"`
	Agent     AgentConfig     `yaml:"agent"`
	Model     ModelConfig     `yaml:"model"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Memory    MemoryConfig    `yaml:"memory"`
	Audit     AuditConfig     `yaml:"audit"`
	Tracing   TracingConfig   `yaml:"tracing"`

	// LogLevel is the default logging level (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// APIPort is the port the API server listens on
	APIPort int `yaml:"api_port"`

	// MaxConcurrentRequests limits in-flight API requests
	MaxConcurrentRequests int `yaml:"max_concurrent_requests"`
}

// AgentConfig configures the turn orchestration engine.
type AgentConfig struct {
	// DefaultBudgetKRW is the per-session ingredient budget in KRW.
	// 0 disables the budget ceiling entirely.
	DefaultBudgetKRW int64 `yaml:"default_budget_krw"`

	// ShortTermLimit is the short-term memory window (exchanges per session)
	ShortTermLimit int `yaml:"short_term_limit"`

	// HistoryCompactThreshold is the exchange count at which older
	// history is folded into a summary entry
	HistoryCompactThreshold int `yaml:"history_compact_threshold"`

	// MaxToolCalls caps tool calls per turn
	MaxToolCalls int `yaml:"max_tool_calls"`
}

// ModelConfig selects and configures the LLM backend.
type ModelConfig struct {
	// Backend is one of: mock, openai, anthropic, gemini
	Backend string `yaml:"backend"`

	// Model is the provider model name (e.g., "gpt-4o-mini")
	Model string `yaml:"model"`

	// APIKey overrides the provider env var when set
	APIKey string `yaml:"api_key"`

	// ScenarioPath points the mock backend at a YAML scenario file.
	// Empty means built-in canned responses.
	ScenarioPath string `yaml:"scenario_path"`
}

// RetrievalConfig selects and configures the knowledge retriever.
type RetrievalConfig struct {
	// Backend is one of: memory, weaviate
	Backend string `yaml:"backend"`

	// CacheEntries is the retrieval LRU cache size
	CacheEntries int `yaml:"cache_entries"`

	// CacheTTLSeconds bounds how long cached retrievals stay fresh
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`

	Weaviate WeaviateConfig `yaml:"weaviate"`
}

// WeaviateConfig configures the optional Weaviate retrieval backend.
type WeaviateConfig struct {
	// Host is the weaviate host:port
	Host string `yaml:"host"`

	// Scheme is http or https
	Scheme string `yaml:"scheme"`

	// Class is the weaviate class holding recipe documents
	Class string `yaml:"class"`
}

// MemoryConfig selects the long-term fact store backend.
type MemoryConfig struct {
	// Backend is one of: memory, badger
	Backend string `yaml:"backend"`

	// BadgerPath is the on-disk location for the badger backend
	BadgerPath string `yaml:"badger_path"`
}

// AuditConfig configures the JSONL audit trail.
type AuditConfig struct {
	// Path is the audit log file. Empty disables auditing.
	Path string `yaml:"path"`
}

// TracingConfig configures OpenTelemetry trace export.
type TracingConfig struct {
	// Enabled turns OTLP trace export on
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC endpoint (host:port)
	Endpoint string `yaml:"endpoint"`

	// TLSCAPath is the CA certificate for TLS verification
	TLSCAPath string `yaml:"tls_ca_path"`

	// TLSInsecure disables transport security (local collectors)
	TLSInsecure bool `yaml:"tls_insecure"`
}

// Default returns a Config with the built-in defaults: mock model,
// in-memory stores, 20000 KRW budget.
func Default() *Config {
	return &Config{
		SchemaVersion: "v1",
		Server: ServerConfig{
			APIPort:               8080,
			MaxConcurrentRequests: 100,
		},
		Agent: AgentConfig{
			DefaultBudgetKRW:        20000,
			ShortTermLimit:          10,
			HistoryCompactThreshold: 20,
			MaxToolCalls:            5,
		},
		Model: ModelConfig{
			Backend: "mock",
			Model:   "gpt-4o-mini",
		},
		Retrieval: RetrievalConfig{
			Backend:         "memory",
			CacheEntries:    512,
			CacheTTLSeconds: 120,
			Weaviate: WeaviateConfig{
				Scheme: "http",
				Class:  "RecipeDoc",
			},
		},
		Memory: MemoryConfig{
			Backend: "memory",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML config file with Koanf and validates it.
// An empty path returns the defaults.
//
// Error cases:
//   - File not found or cannot be read
//   - Invalid YAML syntax
//   - Schema validation failure (unsupported version, bad backend names,
//     version gate below the running agent)
func Load(filepath string) (*Config, error) {
	cfg := Default()
	if filepath == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(filepath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config from %q: %w", filepath, err)
	}

	// Unmarshal over the defaults so absent keys keep their default values
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse config from %q: %w", filepath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed for %q: %w", filepath, err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SchemaVersion != "v1" {
		return NewConfigError(fmt.Sprintf("unsupported schema_version: %q (expected \"v1\")", c.SchemaVersion))
	}

	if c.MinAgentVersion != "" {
		min, err := goversion.NewVersion(c.MinAgentVersion)
		if err != nil {
			return NewConfigError(fmt.Sprintf("invalid min_agent_version %q: %v", c.MinAgentVersion, err))
		}
		current := goversion.Must(goversion.NewVersion(AgentVersion))
		if current.LessThan(min) {
			return NewConfigError(fmt.Sprintf(
				"config requires agent version >= %s, running %s", c.MinAgentVersion, AgentVersion))
		}
	}

	if c.Server.APIPort < 1 || c.Server.APIPort > 65535 {
		return NewConfigError("server.api_port must be between 1 and 65535")
	}
	if c.Server.MaxConcurrentRequests < 1 {
		return NewConfigError("server.max_concurrent_requests must be at least 1")
	}

	if c.Agent.DefaultBudgetKRW < 0 {
		return NewConfigError("agent.default_budget_krw must not be negative")
	}
	if c.Agent.ShortTermLimit < 1 {
		return NewConfigError("agent.short_term_limit must be at least 1")
	}
	if c.Agent.HistoryCompactThreshold < 2 {
		return NewConfigError("agent.history_compact_threshold must be at least 2")
	}
	if c.Agent.MaxToolCalls < 1 {
		return NewConfigError("agent.max_tool_calls must be at least 1")
	}

	switch c.Model.Backend {
	case "mock", "openai", "anthropic", "gemini":
	default:
		return NewConfigError(fmt.Sprintf(
			"model.backend must be one of mock, openai, anthropic, gemini (got %q)", c.Model.Backend))
	}

	switch c.Retrieval.Backend {
	case "memory":
	case "weaviate":
		if c.Retrieval.Weaviate.Host == "" {
			return NewConfigError("retrieval.weaviate.host must be set for the weaviate backend")
		}
	default:
		return NewConfigError(fmt.Sprintf(
			"retrieval.backend must be one of memory, weaviate (got %q)", c.Retrieval.Backend))
	}
	if c.Retrieval.CacheEntries < 1 {
		return NewConfigError("retrieval.cache_entries must be at least 1")
	}
	if c.Retrieval.CacheTTLSeconds < 1 {
		return NewConfigError("retrieval.cache_ttl_seconds must be at least 1")
	}

	switch c.Memory.Backend {
	case "memory":
	case "badger":
		if c.Memory.BadgerPath == "" {
			return NewConfigError("memory.badger_path must be set for the badger backend")
		}
	default:
		return NewConfigError(fmt.Sprintf(
			"memory.backend must be one of memory, badger (got %q)", c.Memory.Backend))
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return NewConfigError("tracing.endpoint must be set when tracing is enabled")
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
