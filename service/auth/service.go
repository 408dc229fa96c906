package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/refresher/model/item"
)

// Service resolves the authentication context of an account. Resolution is
// part of the synchronous setup of a refresh, never of the fan-out itself.
type Service interface {
	Resolve(ctx context.Context, accountID string) (*item.AccountAuth, error)
}

// Memory is an in-memory auth lookup, used in tests and embedded setups.
type Memory struct {
	mu    sync.RWMutex
	auths map[string]*item.AccountAuth
}

// NewMemory creates an empty in-memory auth lookup.
func NewMemory() *Memory {
	return &Memory{auths: make(map[string]*item.AccountAuth)}
}

// Register associates an auth context with its account.
func (m *Memory) Register(auth *item.AccountAuth) {
	if auth == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auths[auth.AccountID] = auth
}

// Resolve returns the auth context registered for an account.
func (m *Memory) Resolve(_ context.Context, accountID string) (*item.AccountAuth, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	auth, ok := m.auths[accountID]
	if !ok {
		return nil, fmt.Errorf("no auth registered for account %s", accountID)
	}
	return auth, nil
}

var _ Service = (*Memory)(nil)
