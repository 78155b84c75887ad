package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevelFlags(t *testing.T) {
	tests := []struct {
		name         string
		flags        []string
		wantDefault  string
		wantPackages map[string]string
		wantErr      bool
	}{
		{
			name:         "simple level sets default",
			flags:        []string{"debug"},
			wantDefault:  "debug",
			wantPackages: map[string]string{},
		},
		{
			name:         "explicit default key",
			flags:        []string{"default=warn"},
			wantDefault:  "warn",
			wantPackages: map[string]string{},
		},
		{
			name:        "per-package levels",
			flags:       []string{"info", "agent.engine=debug", "api=error"},
			wantDefault: "info",
			wantPackages: map[string]string{
				"agent.engine": "debug",
				"api":          "error",
			},
		},
		{
			name:    "invalid default level",
			flags:   []string{"loud"},
			wantErr: true,
		},
		{
			name:    "invalid package level",
			flags:   []string{"info", "api=silent"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defaultLevel, packages, err := parseLogLevelFlags(tt.flags)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDefault, defaultLevel)
			// Ambient LOG_LEVEL_* vars may add entries, so check the
			// expected keys rather than the whole map.
			for pkg, level := range tt.wantPackages {
				assert.Equal(t, level, packages[pkg], pkg)
			}
		})
	}
}

func TestParseLogLevelFlagsEnvVars(t *testing.T) {
	t.Setenv("LOG_LEVEL_AGENT_ENGINE", "debug")

	defaultLevel, packages, err := parseLogLevelFlags([]string{"info"})
	require.NoError(t, err)
	assert.Equal(t, "info", defaultLevel)
	assert.Equal(t, "debug", packages["agent.engine"])

	// CLI flags override env vars for the same package.
	_, packages, err = parseLogLevelFlags([]string{"info", "agent.engine=warn"})
	require.NoError(t, err)
	assert.Equal(t, "warn", packages["agent.engine"])
}

func TestConvertEnvKeyToPackageName(t *testing.T) {
	assert.Equal(t, "agent.engine", convertEnvKeyToPackageName("LOG_LEVEL_AGENT_ENGINE"))
	assert.Equal(t, "api", convertEnvKeyToPackageName("LOG_LEVEL_API"))
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "fatal", "INFO"} {
		assert.NoError(t, validateLogLevel(level), level)
	}
	assert.Error(t, validateLogLevel("verbose"))
	assert.Error(t, validateLogLevel(""))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "short text", summarize("short  text", 60))
	assert.Equal(t, "줄바꿈이 공백으로", summarize("줄바꿈이\n공백으로", 60))

	long := summarize("가나다라마바사아자차카타파하", 8)
	assert.Equal(t, "가나다라마바사…", long)
}
