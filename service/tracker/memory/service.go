package memory

import (
	"context"
	"fmt"

	"github.com/viant/refresher/internal/idgen"
	"github.com/viant/refresher/model/transaction"
	"github.com/viant/refresher/service/dao"
	"github.com/viant/refresher/service/dao/criteria"
	"github.com/viant/refresher/service/dao/store"
	"github.com/viant/refresher/service/tracker"
)

// Service is an in-memory transaction tracker backed by the generic DAO
// store. Terminal transitions are delegated to the transaction itself so a
// second MarkDone/MarkFailed is rejected rather than silently overwriting.
type Service struct {
	store *store.MemoryStore[string, transaction.Transaction]
}

// New creates a new in-memory tracker.
func New() *Service {
	return &Service{
		store: store.NewMemoryStore[string, transaction.Transaction](
			func(t *transaction.Transaction) string { return t.ID },
		),
	}
}

// Create registers a new pending transaction and returns its id.
func (s *Service) Create(ctx context.Context, accountID, kind string) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("accountID cannot be empty")
	}
	trans := transaction.New(idgen.New(), accountID, kind)
	if err := s.store.Save(ctx, trans); err != nil {
		return "", fmt.Errorf("failed to save transaction: %w", err)
	}
	return trans.ID, nil
}

// MarkDone moves a pending transaction to done.
func (s *Service) MarkDone(ctx context.Context, id string) error {
	trans, err := s.store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s: %w", id, err)
	}
	return trans.Complete()
}

// MarkFailed moves a pending transaction to failed with the supplied reason.
func (s *Service) MarkFailed(ctx context.Context, id string, reason string) error {
	trans, err := s.store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s: %w", id, err)
	}
	return trans.Fail(reason)
}

// Get returns a snapshot of a transaction.
func (s *Service) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	trans, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return trans.Clone(), nil
}

// List returns snapshots of tracked transactions, optionally filtered by a
// "State" parameter.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*transaction.Transaction, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*transaction.Transaction
	for _, trans := range records {
		if !criteria.FilterByState(trans.GetState(), parameters) {
			continue
		}
		out = append(out, trans.Clone())
	}
	return out, nil
}

// ensure Service implements tracker.Service
var _ tracker.Service = (*Service)(nil)
