// Package audit records the turn pipeline as JSONL events: routing
// decisions, model calls, tool dispatch, interrupts, memory writes and
// reflection scores. The trail is append-only and flushed per event so
// a crashed process leaves a readable log behind.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// EventType represents the type of audit event.
type EventType string

const (
	// EventTypeTurnStarted marks the acceptance of a user turn.
	EventTypeTurnStarted EventType = "turn_started"
	// EventTypeRouteDecided marks the supervisor routing decision.
	EventTypeRouteDecided EventType = "route_decided"
	// EventTypeLLMRequest logs each model call with token usage.
	EventTypeLLMRequest EventType = "llm_request"
	// EventTypeToolStart marks the start of a tool call.
	EventTypeToolStart EventType = "tool_start"
	// EventTypeToolComplete marks the completion of a tool call.
	EventTypeToolComplete EventType = "tool_complete"
	// EventTypeInterruptRaised marks a budget interrupt suspending the turn.
	EventTypeInterruptRaised EventType = "interrupt_raised"
	// EventTypeInterruptResolved marks a user choice resuming the turn.
	EventTypeInterruptResolved EventType = "interrupt_resolved"
	// EventTypeMemoryWritten marks facts persisted to long-term memory.
	EventTypeMemoryWritten EventType = "memory_written"
	// EventTypeReflectionScored marks the confidence score of an answer.
	EventTypeReflectionScored EventType = "reflection_scored"
	// EventTypeTurnComplete marks a turn finishing with an answer.
	EventTypeTurnComplete EventType = "turn_complete"
	// EventTypeTurnFailed marks a turn aborted by an error.
	EventTypeTurnFailed EventType = "turn_failed"
)

// Event represents a single audit log event.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// Type is the event type.
	Type EventType `json:"type"`
	// SessionID is the session the event belongs to.
	SessionID string `json:"session_id"`
	// TurnID is the turn within the session (if applicable).
	TurnID string `json:"turn_id,omitempty"`
	// Data contains event-specific data.
	Data map[string]interface{} `json:"data,omitempty"`
}

// Logger writes audit events to a JSONL file. The zero value (or a
// logger from NewNopLogger) discards events, which lets callers keep
// the call sites unconditional when auditing is disabled.
type Logger struct {
	file   *os.File
	writer *bufio.Writer
	mutex  sync.Mutex
}

// NewLogger creates an audit logger appending to the given file path.
func NewLogger(filePath string) (*Logger, error) {
	// #nosec G304 -- audit log path is intentionally configurable
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &Logger{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// NewNopLogger returns a logger that discards all events.
func NewNopLogger() *Logger {
	return &Logger{}
}

// write appends one event to the trail.
func (l *Logger) write(event Event) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}

	if _, err := l.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	// Flush immediately for crash safety
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit log: %w", err)
	}

	return nil
}

// LogTurnStarted logs the acceptance of a user turn.
func (l *Logger) LogTurnStarted(sessionID, turnID, userID, query string) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeTurnStarted,
		SessionID: sessionID,
		TurnID:    turnID,
		Data: map[string]interface{}{
			"user_id": userID,
			"query":   truncateString(query, 500),
		},
	})
}

// LogRouteDecided logs the supervisor routing decision.
func (l *Logger) LogRouteDecided(sessionID, turnID, route, modificationKind string) error {
	data := map[string]interface{}{
		"route": route,
	}
	if modificationKind != "" {
		data["modification_kind"] = modificationKind
	}
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeRouteDecided,
		SessionID: sessionID,
		TurnID:    turnID,
		Data:      data,
	})
}

// LogLLMRequest logs an individual model call with token usage.
func (l *Logger) LogLLMRequest(sessionID, turnID, provider, model, phase string, inputTokens, outputTokens int) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeLLMRequest,
		SessionID: sessionID,
		TurnID:    turnID,
		Data: map[string]interface{}{
			"provider":      provider,
			"model":         model,
			"phase":         phase,
			"input_tokens":  inputTokens,
			"output_tokens": outputTokens,
			"total_tokens":  inputTokens + outputTokens,
		},
	})
}

// LogToolStart logs the start of a tool call.
func (l *Logger) LogToolStart(sessionID, turnID, toolName, query string) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeToolStart,
		SessionID: sessionID,
		TurnID:    turnID,
		Data: map[string]interface{}{
			"tool_name": toolName,
			"query":     truncateString(query, 200),
		},
	})
}

// LogToolComplete logs the completion of a tool call.
func (l *Logger) LogToolComplete(sessionID, turnID, toolName string, success bool, duration time.Duration, costEstimate int) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeToolComplete,
		SessionID: sessionID,
		TurnID:    turnID,
		Data: map[string]interface{}{
			"tool_name":     toolName,
			"success":       success,
			"duration_ms":   duration.Milliseconds(),
			"cost_estimate": costEstimate,
		},
	})
}

// LogInterruptRaised logs a budget interrupt suspending the turn.
func (l *Logger) LogInterruptRaised(sessionID, turnID, interruptID string, budget, actual, diff int) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeInterruptRaised,
		SessionID: sessionID,
		TurnID:    turnID,
		Data: map[string]interface{}{
			"interrupt_id": interruptID,
			"budget":       budget,
			"actual":       actual,
			"diff":         diff,
		},
	})
}

// LogInterruptResolved logs the user choice that resumed the turn.
func (l *Logger) LogInterruptResolved(sessionID, turnID, interruptID, choice string) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeInterruptResolved,
		SessionID: sessionID,
		TurnID:    turnID,
		Data: map[string]interface{}{
			"interrupt_id": interruptID,
			"choice":       choice,
		},
	})
}

// LogMemoryWritten logs facts persisted to long-term memory.
func (l *Logger) LogMemoryWritten(sessionID, turnID, userID string, factCount int, factTypes []string) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeMemoryWritten,
		SessionID: sessionID,
		TurnID:    turnID,
		Data: map[string]interface{}{
			"user_id":    userID,
			"fact_count": factCount,
			"fact_types": factTypes,
		},
	})
}

// LogReflectionScored logs the confidence score attached to an answer.
func (l *Logger) LogReflectionScored(sessionID, turnID string, confidence float64, annotations, violations int) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeReflectionScored,
		SessionID: sessionID,
		TurnID:    turnID,
		Data: map[string]interface{}{
			"confidence":  confidence,
			"annotations": annotations,
			"violations":  violations,
		},
	})
}

// LogTurnComplete logs a turn finishing with an answer.
func (l *Logger) LogTurnComplete(sessionID, turnID, route string, duration time.Duration, llmCalls int) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeTurnComplete,
		SessionID: sessionID,
		TurnID:    turnID,
		Data: map[string]interface{}{
			"route":       route,
			"duration_ms": duration.Milliseconds(),
			"llm_calls":   llmCalls,
		},
	})
}

// LogTurnFailed logs a turn aborted by an error.
func (l *Logger) LogTurnFailed(sessionID, turnID, reason string) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeTurnFailed,
		SessionID: sessionID,
		TurnID:    turnID,
		Data: map[string]interface{}{
			"reason": reason,
		},
	})
}

// Close closes the audit logger and flushes any pending writes.
func (l *Logger) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.file == nil {
		return nil
	}

	var errs []error

	if err := l.writer.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush audit log: %w", err))
	}

	if err := l.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close audit log file: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing audit log: %v", errs)
	}

	return nil
}

// Start implements lifecycle.Component.
func (l *Logger) Start(ctx context.Context) error {
	return nil
}

// Stop implements lifecycle.Component.
func (l *Logger) Stop(ctx context.Context) error {
	return l.Close()
}

// Name implements lifecycle.Component.
func (l *Logger) Name() string {
	return "Audit Logger"
}

// truncateString truncates a string to maxLen bytes.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "...[truncated]"
}
