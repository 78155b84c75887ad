package tracing

import (
	"context"
	"testing"
)

func TestNewProviderTLSModes(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{
			name: "insecure skip verify",
			cfg: Config{
				Enabled:     true,
				Endpoint:    "localhost:4317",
				TLSInsecure: true,
			},
			expectError: false,
		},
		{
			name: "missing CA certificate",
			cfg: Config{
				Enabled:   true,
				Endpoint:  "localhost:4317",
				TLSCAPath: "/nonexistent/ca.crt",
			},
			expectError: true,
		},
		{
			name: "plaintext connection",
			cfg: Config{
				Enabled:  true,
				Endpoint: "localhost:4317",
			},
			expectError: false,
		},
		{
			name:        "enabled without endpoint",
			cfg:         Config{Enabled: true},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.cfg)
			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if provider != nil && provider.enabled != tt.cfg.Enabled {
				t.Errorf("provider enabled=%v, want %v", provider.enabled, tt.cfg.Enabled)
			}
		})
	}
}

func TestDisabledProviderIsNoop(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.IsEnabled() {
		t.Error("provider should report disabled")
	}
	if err := provider.Start(context.Background()); err != nil {
		t.Errorf("Start returned error: %v", err)
	}
	if err := provider.Stop(context.Background()); err != nil {
		t.Errorf("Stop returned error: %v", err)
	}
	if provider.GetTracer("test") == nil {
		t.Error("GetTracer returned nil")
	}
}
