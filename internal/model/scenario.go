package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario scripts the mock backend from a YAML file. Each completion
// request is matched against the remaining steps in order; the first
// step whose trigger matches is consumed and its text returned. When no
// step matches, the mock falls back to its built-in behavior, so a
// scenario only needs to script the turns it cares about.
type Scenario struct {
	// Name identifies the scenario.
	Name string `yaml:"name"`

	// Description says what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Steps are the scripted responses, consumed in order.
	Steps []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single scripted response.
type ScenarioStep struct {
	// Trigger gates the step. Supported forms:
	//   ""               auto-match (any request)
	//   "contains:TEXT"  request contains TEXT (case-insensitive)
	//   "phase:decision" request asks for a decision document
	//   "phase:synthesis" request asks for a final answer
	// Anything else is a plain substring match.
	Trigger string `yaml:"trigger,omitempty"`

	// Text is the scripted completion.
	Text string `yaml:"text"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	// Scenario paths come from configuration on purpose.
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file %s: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks the scenario is runnable.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario must have at least one step")
	}
	for i, step := range s.Steps {
		if step.Text == "" {
			return fmt.Errorf("step[%d]: text is required", i)
		}
	}
	return nil
}

// StepMatcher walks a scenario's steps, consuming each at most once.
type StepMatcher struct {
	scenario *Scenario
	consumed []bool
}

// NewStepMatcher creates a matcher positioned at the first step.
func NewStepMatcher(scenario *Scenario) *StepMatcher {
	return &StepMatcher{
		scenario: scenario,
		consumed: make([]bool, len(scenario.Steps)),
	}
}

// NextStep returns the first unconsumed step whose trigger matches req,
// or nil when none does.
func (m *StepMatcher) NextStep(req Request) *ScenarioStep {
	for i := range m.scenario.Steps {
		if m.consumed[i] {
			continue
		}
		step := &m.scenario.Steps[i]
		if matchesTrigger(step.Trigger, req) {
			m.consumed[i] = true
			return step
		}
	}
	return nil
}

// Reset marks every step unconsumed.
func (m *StepMatcher) Reset() {
	m.consumed = make([]bool, len(m.scenario.Steps))
}

func matchesTrigger(trigger string, req Request) bool {
	switch {
	case trigger == "":
		return true
	case trigger == "phase:decision":
		return req.JSONMode
	case trigger == "phase:synthesis":
		return !req.JSONMode
	case strings.HasPrefix(trigger, "contains:"):
		needle := strings.TrimPrefix(trigger, "contains:")
		return containsFold(req.User, needle) || containsFold(req.System, needle)
	default:
		return containsFold(req.User, trigger) || containsFold(req.System, trigger)
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
