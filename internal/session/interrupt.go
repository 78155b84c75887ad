package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yooncheol/bapsang/internal/tools"
)

// InterruptState tracks the budget interrupt lifecycle. A watcher is
// Active while spend stays under budget, moves to AwaitingChoice the
// moment the ceiling is crossed, and ends Resolved once the user picks
// how to proceed.
type InterruptState int

const (
	InterruptActive InterruptState = iota
	InterruptAwaitingChoice
	InterruptResolved
)

func (s InterruptState) String() string {
	switch s {
	case InterruptActive:
		return "ACTIVE"
	case InterruptAwaitingChoice:
		return "AWAITING_CHOICE"
	case InterruptResolved:
		return "RESOLVED"
	default:
		return "UNKNOWN"
	}
}

// Choice is the user's answer to a budget interrupt.
type Choice int

const (
	ChoiceUnknown Choice = iota
	ChoiceContinue
	ChoiceSubstitute
	ChoiceCancel
)

func (c Choice) String() string {
	switch c {
	case ChoiceContinue:
		return "continue"
	case ChoiceSubstitute:
		return "substitute"
	case ChoiceCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Label returns the Korean option text shown to the user.
func (c Choice) Label() string {
	switch c {
	case ChoiceContinue:
		return "계속 진행"
	case ChoiceSubstitute:
		return "저렴한 대안 찾기"
	case ChoiceCancel:
		return "취소"
	default:
		return ""
	}
}

// ParseChoice maps wire values and the Korean option labels onto a
// Choice. Unrecognized input returns false.
func ParseChoice(s string) (Choice, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continue", "계속 진행", "계속":
		return ChoiceContinue, true
	case "substitute", "저렴한 대안 찾기", "저렴한 대안":
		return ChoiceSubstitute, true
	case "cancel", "취소":
		return ChoiceCancel, true
	default:
		return ChoiceUnknown, false
	}
}

// ChoiceLabels lists the options presented with every budget interrupt,
// in display order.
func ChoiceLabels() []string {
	return []string{
		ChoiceContinue.Label(),
		ChoiceSubstitute.Label(),
		ChoiceCancel.Label(),
	}
}

// Interrupt is a suspended budget question. It is created already in
// AwaitingChoice: the Active phase lives in the watcher that raised it.
// Resolve is first-caller-wins so racing shells cannot double-apply a
// choice.
type Interrupt struct {
	ID      string
	Budget  int64
	Actual  int64
	Diff    int64
	Message string
	Options []string

	// TriggerIndex is the position in the turn's pending calls of the
	// call whose cost crossed the budget.
	TriggerIndex int

	RaisedAt time.Time

	mu     sync.Mutex
	state  InterruptState
	choice Choice
}

// NewInterrupt builds the awaiting-choice interrupt for a budget
// breach of actual over budget at the given call index.
func NewInterrupt(budget, actual int64, triggerIndex int) *Interrupt {
	diff := actual - budget
	return &Interrupt{
		ID:           uuid.NewString(),
		Budget:       budget,
		Actual:       actual,
		Diff:         diff,
		Message:      fmt.Sprintf("예산을 %s원 초과합니다. 어떻게 할까요?", tools.FormatWon(diff)),
		Options:      ChoiceLabels(),
		TriggerIndex: triggerIndex,
		RaisedAt:     time.Now(),
		state:        InterruptAwaitingChoice,
	}
}

// State returns the current lifecycle state.
func (i *Interrupt) State() InterruptState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Choice returns the recorded resolution, ChoiceUnknown while awaiting.
func (i *Interrupt) Choice() Choice {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.choice
}

// Resolve records the first choice and reports whether this call won.
// Later callers receive the already-recorded choice and false.
func (i *Interrupt) Resolve(c Choice) (Choice, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == InterruptResolved {
		return i.choice, false
	}
	i.state = InterruptResolved
	i.choice = c
	return c, true
}
