package tracker

import (
	"context"

	"github.com/viant/refresher/model/transaction"
)

// Service tracks refresh transactions. The engine creates a transaction
// before fan-out starts and settles it exactly once; MarkDone and MarkFailed
// are mutually exclusive and each is invoked at most once per transaction.
type Service interface {
	// Create registers a new pending transaction and returns its id.
	Create(ctx context.Context, accountID, kind string) (string, error)

	// MarkDone moves a pending transaction to its done state.
	MarkDone(ctx context.Context, id string) error

	// MarkFailed moves a pending transaction to its failed state with the
	// supplied reason code.
	MarkFailed(ctx context.Context, id string, reason string) error

	// Get returns a point-in-time snapshot of a transaction.
	Get(ctx context.Context, id string) (*transaction.Transaction, error)
}
