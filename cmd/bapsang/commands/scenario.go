package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yooncheol/bapsang/internal/model"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Inspect and validate mock-model scenario files",
}

var scenarioValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a scenario YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioValidate,
}

var scenarioShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the steps of a scenario YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioShow,
}

func init() {
	scenarioCmd.AddCommand(scenarioValidateCmd)
	scenarioCmd.AddCommand(scenarioShowCmd)
}

func runScenarioValidate(cmd *cobra.Command, args []string) error {
	sc, err := model.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s: %d step(s)\n", sc.Name, len(sc.Steps))
	return nil
}

func runScenarioShow(cmd *cobra.Command, args []string) error {
	sc, err := model.LoadScenario(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("Description: %s\n", sc.Description)
	}
	fmt.Printf("Steps: %d\n", len(sc.Steps))
	for i, step := range sc.Steps {
		trigger := step.Trigger
		if trigger == "" {
			trigger = "auto"
		}
		fmt.Printf("  %2d. [%s] %s\n", i+1, trigger, summarize(step.Text, 60))
	}
	return nil
}

// summarize collapses text to a single line of at most max runes.
func summarize(text string, max int) string {
	line := strings.Join(strings.Fields(text), " ")
	runes := []rune(line)
	if len(runes) <= max {
		return line
	}
	return string(runes[:max-1]) + "…"
}
