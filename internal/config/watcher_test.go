package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigRaw(t *testing.T, path string, budget int64) {
	t.Helper()
	data := []byte(fmt.Sprintf("schema_version: v1\nagent:\n  default_budget_krw: %d\n", budget))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

type reloadRecorder struct {
	mu      sync.Mutex
	budgets []int64
}

func (r *reloadRecorder) callback(cfg *Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.budgets = append(r.budgets, cfg.Agent.DefaultBudgetKRW)
	return nil
}

func (r *reloadRecorder) snapshot() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.budgets))
	copy(out, r.budgets)
	return out
}

func TestWatcher_InitialLoad(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "bapsang.yaml")
	writeConfigRaw(t, tmpFile, 15000)

	rec := &reloadRecorder{}
	w, err := NewWatcher(WatcherConfig{FilePath: tmpFile, DebounceMillis: 50}, rec.callback)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	budgets := rec.snapshot()
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(15000), budgets[0])
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "bapsang.yaml")
	writeConfigRaw(t, tmpFile, 15000)

	rec := &reloadRecorder{}
	w, err := NewWatcher(WatcherConfig{FilePath: tmpFile, DebounceMillis: 50}, rec.callback)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	writeConfigRaw(t, tmpFile, 30000)

	require.Eventually(t, func() bool {
		b := rec.snapshot()
		return len(b) >= 2 && b[len(b)-1] == 30000
	}, 3*time.Second, 20*time.Millisecond, "expected reload with new budget")
}

func TestWatcher_InvalidReloadKeepsWatching(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "bapsang.yaml")
	writeConfigRaw(t, tmpFile, 15000)

	rec := &reloadRecorder{}
	w, err := NewWatcher(WatcherConfig{FilePath: tmpFile, DebounceMillis: 50}, rec.callback)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// invalid schema version must not reach the callback
	require.NoError(t, os.WriteFile(tmpFile, []byte("schema_version: v9\n"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)

	// a valid write afterwards still triggers a reload
	writeConfigRaw(t, tmpFile, 25000)
	require.Eventually(t, func() bool {
		b := rec.snapshot()
		return len(b) >= 2 && b[len(b)-1] == 25000
	}, 3*time.Second, 20*time.Millisecond)
}

func TestNewWatcher_Validation(t *testing.T) {
	_, err := NewWatcher(WatcherConfig{FilePath: ""}, func(*Config) error { return nil })
	assert.Error(t, err)

	_, err = NewWatcher(WatcherConfig{FilePath: "x.yaml"}, nil)
	assert.Error(t, err)
}

func TestWatcher_StartFailsOnMissingFile(t *testing.T) {
	rec := &reloadRecorder{}
	w, err := NewWatcher(WatcherConfig{FilePath: "/nonexistent/bapsang.yaml"}, rec.callback)
	require.NoError(t, err)

	err = w.Start(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "initial config")
}
