package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestLoggerWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	logger, err := NewLogger(path)
	require.NoError(t, err)

	require.NoError(t, logger.LogTurnStarted("sess-1", "turn-1", "user-1", "스테이크 재료 알려줘"))
	require.NoError(t, logger.LogRouteDecided("sess-1", "turn-1", "new", ""))
	require.NoError(t, logger.LogToolStart("sess-1", "turn-1", "shopping_search", "소고기 등심"))
	require.NoError(t, logger.LogToolComplete("sess-1", "turn-1", "shopping_search", true, 12*time.Millisecond, 15000))
	require.NoError(t, logger.LogTurnComplete("sess-1", "turn-1", "new", 80*time.Millisecond, 2))
	require.NoError(t, logger.Close())

	events := readEvents(t, path)
	require.Len(t, events, 5)

	assert.Equal(t, EventTypeTurnStarted, events[0].Type)
	assert.Equal(t, "sess-1", events[0].SessionID)
	assert.Equal(t, "turn-1", events[0].TurnID)
	assert.Equal(t, "user-1", events[0].Data["user_id"])

	assert.Equal(t, EventTypeRouteDecided, events[1].Type)
	assert.Equal(t, "new", events[1].Data["route"])
	assert.NotContains(t, events[1].Data, "modification_kind")

	assert.Equal(t, EventTypeToolComplete, events[3].Type)
	assert.Equal(t, true, events[3].Data["success"])
	assert.Equal(t, float64(15000), events[3].Data["cost_estimate"])

	assert.Equal(t, EventTypeTurnComplete, events[4].Type)
	assert.Equal(t, float64(2), events[4].Data["llm_calls"])
}

func TestLoggerAppendsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	first, err := NewLogger(path)
	require.NoError(t, err)
	require.NoError(t, first.LogTurnStarted("sess-1", "turn-1", "user-1", "hello"))
	require.NoError(t, first.Close())

	second, err := NewLogger(path)
	require.NoError(t, err)
	require.NoError(t, second.LogTurnFailed("sess-1", "turn-2", "generation failure"))
	require.NoError(t, second.Close())

	events := readEvents(t, path)
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeTurnStarted, events[0].Type)
	assert.Equal(t, EventTypeTurnFailed, events[1].Type)
	assert.Equal(t, "generation failure", events[1].Data["reason"])
}

func TestInterruptEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	logger, err := NewLogger(path)
	require.NoError(t, err)
	require.NoError(t, logger.LogInterruptRaised("sess-1", "turn-1", "int-1", 20000, 23000, 3000))
	require.NoError(t, logger.LogInterruptResolved("sess-1", "turn-1", "int-1", "계속 진행"))
	require.NoError(t, logger.Close())

	events := readEvents(t, path)
	require.Len(t, events, 2)
	assert.Equal(t, float64(3000), events[0].Data["diff"])
	assert.Equal(t, "계속 진행", events[1].Data["choice"])
	assert.Equal(t, events[0].Data["interrupt_id"], events[1].Data["interrupt_id"])
}

func TestNopLoggerDiscardsEvents(t *testing.T) {
	logger := NewNopLogger()

	assert.NoError(t, logger.LogTurnStarted("sess-1", "turn-1", "user-1", "hello"))
	assert.NoError(t, logger.LogReflectionScored("sess-1", "turn-1", 0.8, 1, 0))
	assert.NoError(t, logger.Close())
}

func TestTruncateLongQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	logger, err := NewLogger(path)
	require.NoError(t, err)

	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	require.NoError(t, logger.LogTurnStarted("sess-1", "turn-1", "user-1", string(long)))
	require.NoError(t, logger.Close())

	events := readEvents(t, path)
	require.Len(t, events, 1)
	query := events[0].Data["query"].(string)
	assert.Len(t, query, 500+len("...[truncated]"))
}
