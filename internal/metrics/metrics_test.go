package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservationsLandOnCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTurn("NEW", "answered", 120*time.Millisecond)
	m.ObserveTurn("NEW", "answered", 80*time.Millisecond)
	m.ObserveTurn("MODIFY", "suspended", 10*time.Millisecond)
	m.ObserveTool("shopping_search", true)
	m.ObserveTool("shopping_search", false)
	m.ObserveInterrupt("substitute")
	m.ObserveConfidence(0.85)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.TurnsTotal.WithLabelValues("NEW", "answered")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TurnsTotal.WithLabelValues("MODIFY", "suspended")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("shopping_search", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("shopping_search", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.InterruptsTotal.WithLabelValues("substitute")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["bapsang_turn_duration_seconds"])
	assert.True(t, names["bapsang_confidence"])
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveTurn("NEW", "answered", time.Second)
	m.ObserveTool("recipe_search", true)
	m.ObserveInterrupt("cancel")
	m.ObserveConfidence(0.5)
}

func TestNilRegistererSkipsRegistration(t *testing.T) {
	m := New(nil)
	require.NotNil(t, m)
	m.ObserveTurn("NEW", "answered", time.Second)
}
