package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterrupt(t *testing.T) {
	in := NewInterrupt(20000, 23000, 1)

	assert.NotEmpty(t, in.ID)
	assert.Equal(t, int64(3000), in.Diff)
	assert.Equal(t, "예산을 3,000원 초과합니다. 어떻게 할까요?", in.Message)
	assert.Equal(t, []string{"계속 진행", "저렴한 대안 찾기", "취소"}, in.Options)
	assert.Equal(t, 1, in.TriggerIndex)
	assert.Equal(t, InterruptAwaitingChoice, in.State())
	assert.Equal(t, ChoiceUnknown, in.Choice())
}

func TestInterruptResolveFirstCallerWins(t *testing.T) {
	in := NewInterrupt(10000, 14500, 0)

	got, won := in.Resolve(ChoiceCancel)
	require.True(t, won)
	require.Equal(t, ChoiceCancel, got)

	// A late caller observes the recorded choice instead of applying
	// its own.
	got, won = in.Resolve(ChoiceContinue)
	assert.False(t, won)
	assert.Equal(t, ChoiceCancel, got)
	assert.Equal(t, InterruptResolved, in.State())
	assert.Equal(t, ChoiceCancel, in.Choice())
}

func TestInterruptResolveConcurrent(t *testing.T) {
	in := NewInterrupt(10000, 12000, 0)

	var wg sync.WaitGroup
	wins := make(chan Choice, 8)
	for _, c := range []Choice{ChoiceContinue, ChoiceSubstitute, ChoiceCancel, ChoiceContinue} {
		wg.Add(1)
		go func(c Choice) {
			defer wg.Done()
			if _, won := in.Resolve(c); won {
				wins <- c
			}
		}(c)
	}
	wg.Wait()
	close(wins)

	var winners []Choice
	for c := range wins {
		winners = append(winners, c)
	}
	require.Len(t, winners, 1)
	assert.Equal(t, winners[0], in.Choice())
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in   string
		want Choice
		ok   bool
	}{
		{"continue", ChoiceContinue, true},
		{"  CONTINUE ", ChoiceContinue, true},
		{"substitute", ChoiceSubstitute, true},
		{"cancel", ChoiceCancel, true},
		{"계속 진행", ChoiceContinue, true},
		{"계속", ChoiceContinue, true},
		{"저렴한 대안 찾기", ChoiceSubstitute, true},
		{"저렴한 대안", ChoiceSubstitute, true},
		{"취소", ChoiceCancel, true},
		{"maybe", ChoiceUnknown, false},
		{"", ChoiceUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseChoice(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChoiceLabels(t *testing.T) {
	assert.Equal(t, "계속 진행", ChoiceContinue.Label())
	assert.Equal(t, "continue", ChoiceContinue.String())
	assert.Equal(t, "substitute", ChoiceSubstitute.String())
	assert.Equal(t, "cancel", ChoiceCancel.String())
}

func TestTurnSuspendedTracksInterruptState(t *testing.T) {
	turn := NewTurnState("장보기")
	assert.False(t, turn.Suspended())

	turn.Interrupt = NewInterrupt(20000, 23000, 0)
	assert.True(t, turn.Suspended())

	turn.Interrupt.Resolve(ChoiceContinue)
	assert.False(t, turn.Suspended())
}
