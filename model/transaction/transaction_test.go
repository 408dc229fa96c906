package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_Lifecycle(t *testing.T) {
	testCases := []struct {
		name         string
		transition   func(*Transaction) error
		expectState  string
		expectReason string
	}{
		{
			name:        "complete",
			transition:  func(trans *Transaction) error { return trans.Complete() },
			expectState: StateDone,
		},
		{
			name:         "fail",
			transition:   func(trans *Transaction) error { return trans.Fail("RATE_LIMITED") },
			expectState:  StateFailed,
			expectReason: "RATE_LIMITED",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trans := New("txn-1", "account-1", "item.refresh")
			assert.Equal(t, StatePending, trans.GetState())
			assert.False(t, trans.IsTerminal())

			assert.NoError(t, tc.transition(trans))
			assert.Equal(t, tc.expectState, trans.GetState())
			assert.Equal(t, tc.expectReason, trans.GetReason())
			assert.True(t, trans.IsTerminal())
			assert.NotNil(t, trans.FinishedAt)
		})
	}
}

func TestTransaction_TerminalStateIsFinal(t *testing.T) {
	trans := New("txn-1", "account-1", "item.refresh")
	assert.NoError(t, trans.Complete())

	// A terminal transaction rejects any further transition.
	assert.Error(t, trans.Complete())
	assert.Error(t, trans.Fail("GENERIC_TIMEOUT"))
	assert.Equal(t, StateDone, trans.GetState())
	assert.Empty(t, trans.GetReason())
}

func TestTransaction_Clone(t *testing.T) {
	trans := New("txn-1", "account-1", "item.refresh")
	snapshot := trans.Clone()
	assert.NoError(t, trans.Fail("ITEM_LOCKED"))

	assert.Equal(t, StatePending, snapshot.GetState())
	assert.Equal(t, StateFailed, trans.GetState())
}
