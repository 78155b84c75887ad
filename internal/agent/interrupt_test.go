package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooncheol/bapsang/internal/session"
)

func TestControllerNoBudgetNeverFires(t *testing.T) {
	ctl := NewInterruptController(0, 0)

	assert.False(t, ctl.RecordCost(1_000_000))
	assert.False(t, ctl.RecordCost(1_000_000))
	assert.False(t, ctl.Fired())
	assert.Equal(t, int64(2_000_000), ctl.Spent())
}

func TestControllerFiresPastCeiling(t *testing.T) {
	ctl := NewInterruptController(20000, 0)

	// Landing exactly on the budget is still within it.
	assert.False(t, ctl.RecordCost(20000))
	assert.False(t, ctl.Fired())

	assert.True(t, ctl.RecordCost(1))
	assert.True(t, ctl.Fired())
	assert.Equal(t, int64(20001), ctl.Spent())
}

func TestControllerFiresOnlyOnce(t *testing.T) {
	ctl := NewInterruptController(10000, 0)

	assert.True(t, ctl.RecordCost(23000))
	assert.False(t, ctl.RecordCost(5000))
	assert.Equal(t, int64(28000), ctl.Spent())
}

func TestControllerSeededWithPriorSpend(t *testing.T) {
	ctl := NewInterruptController(20000, 15000)

	assert.False(t, ctl.RecordCost(4000))
	assert.True(t, ctl.RecordCost(2000))
	assert.Equal(t, int64(21000), ctl.Spent())
}

func TestControllerRaiseBuildsInterrupt(t *testing.T) {
	ctl := NewInterruptController(20000, 0)
	require.True(t, ctl.RecordCost(23000))

	intr := ctl.Raise(2)
	require.NotNil(t, intr)
	assert.Equal(t, int64(20000), intr.Budget)
	assert.Equal(t, int64(23000), intr.Actual)
	assert.Equal(t, int64(3000), intr.Diff)
	assert.Equal(t, 2, intr.TriggerIndex)
	assert.Equal(t, session.InterruptAwaitingChoice, intr.State())
	assert.Contains(t, intr.Message, "3,000원 초과")
	assert.Len(t, intr.Options, 3)
}
