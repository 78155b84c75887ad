// Package metrics exposes Prometheus instrumentation for the turn
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors observed by the engine and shells.
type Metrics struct {
	TurnsTotal      *prometheus.CounterVec // by route and outcome
	ToolCallsTotal  *prometheus.CounterVec // by tool and outcome
	InterruptsTotal *prometheus.CounterVec // by resolution
	TurnDuration    prometheus.Histogram
	Confidence      prometheus.Histogram
}

// New creates and registers the collectors. A nil registerer keeps the
// metrics unregistered, which suits tests that only exercise the
// pipeline.
func New(reg prometheus.Registerer) *Metrics {
	turnsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bapsang_turns_total",
		Help: "Turns processed, by route and outcome",
	}, []string{"route", "outcome"})

	toolCallsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bapsang_tool_calls_total",
		Help: "Tool dispatches, by tool and outcome",
	}, []string{"tool", "outcome"})

	interruptsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bapsang_interrupts_total",
		Help: "Budget interrupts raised, by resolution",
	}, []string{"resolution"})

	turnDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bapsang_turn_duration_seconds",
		Help:    "Wall time per completed turn",
		Buckets: prometheus.DefBuckets,
	})

	confidence := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bapsang_confidence",
		Help:    "Reflection confidence per completed turn",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	if reg != nil {
		reg.MustRegister(turnsTotal, toolCallsTotal, interruptsTotal, turnDuration, confidence)
	}

	return &Metrics{
		TurnsTotal:      turnsTotal,
		ToolCallsTotal:  toolCallsTotal,
		InterruptsTotal: interruptsTotal,
		TurnDuration:    turnDuration,
		Confidence:      confidence,
	}
}

// ObserveTurn records one finished turn.
func (m *Metrics) ObserveTurn(route, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(route, outcome).Inc()
	m.TurnDuration.Observe(dur.Seconds())
}

// ObserveTool records one tool dispatch.
func (m *Metrics) ObserveTool(tool string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

// ObserveInterrupt records one raised interrupt at resolution time.
func (m *Metrics) ObserveInterrupt(resolution string) {
	if m == nil {
		return
	}
	m.InterruptsTotal.WithLabelValues(resolution).Inc()
}

// ObserveConfidence records the reflection score of a completed turn.
func (m *Metrics) ObserveConfidence(v float64) {
	if m == nil {
		return
	}
	m.Confidence.Observe(v)
}
