// Package tui provides the interactive chat surface for the recipe agent
// using Bubble Tea. It drives the turn engine directly: user input becomes
// a turn, a suspended turn surfaces the budget choice selector, and the
// resolved answer lands back in the transcript.
package tui

import "github.com/yooncheol/bapsang/internal/agent"

// turnResultMsg carries the outcome of a SubmitTurn or ResolveInterrupt
// call back into the update loop. Exactly one of result/err is set.
type turnResultMsg struct {
	result *agent.TurnResult
	err    error
}

// initialPromptMsg is sent when the TUI starts with a pre-set message.
// It displays the prompt in the transcript and triggers the first turn.
type initialPromptMsg struct {
	prompt string
}
