package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "v1", cfg.SchemaVersion)
	assert.Equal(t, 8080, cfg.Server.APIPort)
	assert.Equal(t, int64(20000), cfg.Agent.DefaultBudgetKRW)
	assert.Equal(t, 10, cfg.Agent.ShortTermLimit)
	assert.Equal(t, "mock", cfg.Model.Backend)
	assert.Equal(t, "memory", cfg.Retrieval.Backend)
	assert.Equal(t, "memory", cfg.Memory.Backend)
}

func TestLoad_Valid(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "valid.yaml")

	content := `schema_version: v1
server:
  api_port: 9090
agent:
  default_budget_krw: 10000
  max_tool_calls: 3
model:
  backend: mock
  scenario_path: scenarios/dinner.yaml
retrieval:
  backend: memory
  cache_entries: 64
memory:
  backend: badger
  badger_path: /tmp/facts
`
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(tmpFile)
	assert.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Server.APIPort)
	assert.Equal(t, int64(10000), cfg.Agent.DefaultBudgetKRW)
	assert.Equal(t, 3, cfg.Agent.MaxToolCalls)
	assert.Equal(t, "scenarios/dinner.yaml", cfg.Model.ScenarioPath)
	assert.Equal(t, 64, cfg.Retrieval.CacheEntries)
	assert.Equal(t, "badger", cfg.Memory.Backend)
	assert.Equal(t, "/tmp/facts", cfg.Memory.BadgerPath)

	// absent keys keep their defaults
	assert.Equal(t, 10, cfg.Agent.ShortTermLimit)
	assert.Equal(t, 100, cfg.Server.MaxConcurrentRequests)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/to/bapsang.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to load")
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "invalid.yaml")

	content := `schema_version: v1
model:
  backend: "mock
`
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidSchemaVersion(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "schema.yaml")

	content := `schema_version: v2
`
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "schema_version")
}

func TestLoad_VersionGate(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "gate.yaml")

	content := `schema_version: v1
min_agent_version: "99.0.0"
`
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "agent version")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"bad port", func(c *Config) { c.Server.APIPort = 0 }, "api_port"},
		{"negative budget", func(c *Config) { c.Agent.DefaultBudgetKRW = -1 }, "default_budget_krw"},
		{"zero short term", func(c *Config) { c.Agent.ShortTermLimit = 0 }, "short_term_limit"},
		{"bad model backend", func(c *Config) { c.Model.Backend = "llama" }, "model.backend"},
		{"bad retrieval backend", func(c *Config) { c.Retrieval.Backend = "redis" }, "retrieval.backend"},
		{"weaviate without host", func(c *Config) { c.Retrieval.Backend = "weaviate" }, "weaviate.host"},
		{"badger without path", func(c *Config) { c.Memory.Backend = "badger" }, "badger_path"},
		{"tracing without endpoint", func(c *Config) { c.Tracing.Enabled = true }, "tracing.endpoint"},
		{"bad min version", func(c *Config) { c.MinAgentVersion = "not-a-version" }, "min_agent_version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var confErr *ConfigError
			assert.ErrorAs(t, err, &confErr)
		})
	}
}

func TestValidate_ZeroBudgetDisablesCeiling(t *testing.T) {
	cfg := Default()
	cfg.Agent.DefaultBudgetKRW = 0
	assert.NoError(t, cfg.Validate())
}
