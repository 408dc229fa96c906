package persist

import (
	"context"
	"fmt"

	"github.com/viant/refresher/model/item"
	"github.com/viant/refresher/service/dao/store"
)

// Service applies a remote refresh response to local item storage. Apply is
// part of each sub-task's own operation; its failure counts as that
// sub-task's failure.
type Service interface {
	Apply(ctx context.Context, anItem *item.Item, response *item.Response) error
}

// Memory stores applied responses in the generic DAO store, keyed by item id.
type Memory struct {
	store *store.MemoryStore[string, item.Response]
}

// NewMemory creates an in-memory persistence service.
func NewMemory() *Memory {
	return &Memory{
		store: store.NewMemoryStore[string, item.Response](
			func(r *item.Response) string { return r.ItemID },
		),
	}
}

// Apply records the response against the item.
func (m *Memory) Apply(ctx context.Context, anItem *item.Item, response *item.Response) error {
	if anItem == nil || response == nil {
		return fmt.Errorf("item and response are required")
	}
	if response.ItemID == "" {
		response.ItemID = anItem.ID
	}
	return m.store.Save(ctx, response)
}

// Applied returns the stored response for an item, or nil when absent.
func (m *Memory) Applied(ctx context.Context, itemID string) *item.Response {
	response, err := m.store.Load(ctx, itemID)
	if err != nil {
		return nil
	}
	return response
}

var _ Service = (*Memory)(nil)
