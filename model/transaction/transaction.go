package transaction

import (
	"fmt"
	"sync"
	"time"

	"github.com/viant/refresher/internal/clock"
)

// Transaction state constants
const (
	StatePending = "pending"
	StateDone    = "done"
	StateFailed  = "failed"
)

// Transaction represents one refresh run against an account. It is created
// in pending state before fan-out starts and moved exactly once to a
// terminal state (done or failed) by the runner, never reopened.
type Transaction struct {
	ID         string     `json:"id"`
	AccountID  string     `json:"accountId"`
	Kind       string     `json:"kind"`
	State      string     `json:"state"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	mu         sync.RWMutex
}

// New creates a pending transaction.
func New(id, accountID, kind string) *Transaction {
	now := clock.Now()
	return &Transaction{
		ID:        id,
		AccountID: accountID,
		Kind:      kind,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetState returns the transaction state.
func (t *Transaction) GetState() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.State
}

// GetReason returns the recorded failure reason, empty unless failed.
func (t *Transaction) GetReason() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Reason
}

// IsTerminal reports whether the transaction reached done or failed.
func (t *Transaction) IsTerminal() bool {
	state := t.GetState()
	return state == StateDone || state == StateFailed
}

// Complete moves a pending transaction to done. Moving out of a terminal
// state is rejected so a late writer cannot reopen or flip the outcome.
func (t *Transaction) Complete() error {
	return t.finish(StateDone, "")
}

// Fail moves a pending transaction to failed with the supplied reason code.
func (t *Transaction) Fail(reason string) error {
	return t.finish(StateFailed, reason)
}

func (t *Transaction) finish(state, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State != StatePending {
		return fmt.Errorf("transaction %s already %s", t.ID, t.State)
	}
	t.State = state
	t.Reason = reason
	now := clock.Now()
	t.UpdatedAt = now
	t.FinishedAt = &now
	return nil
}

// Clone returns a copy safe for reads outside the store. The sync.RWMutex is
// not copied by value.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := &Transaction{
		ID:         t.ID,
		AccountID:  t.AccountID,
		Kind:       t.Kind,
		State:      t.State,
		Reason:     t.Reason,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		FinishedAt: t.FinishedAt,
	}
	return out
}
