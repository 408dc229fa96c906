package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/refresher/model/item"
)

// Service lists the items of an account eligible for refresh. The listing
// happens synchronously before fan-out starts; the returned order is the
// order items are spawned in, though completion order is unconstrained.
type Service interface {
	ListItems(ctx context.Context, accountID string) ([]*item.Item, error)
}

// Memory is an in-memory item source, used in tests and embedded setups.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]*item.Item
}

// NewMemory creates an empty in-memory item source.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]*item.Item)}
}

// Register associates items with an account, replacing any previous set.
func (m *Memory) Register(accountID string, items ...*item.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[accountID] = items
}

// ListItems returns the registered items for an account.
func (m *Memory) ListItems(_ context.Context, accountID string) ([]*item.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items, ok := m.items[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s not found", accountID)
	}
	return append([]*item.Item(nil), items...), nil
}

var _ Service = (*Memory)(nil)
