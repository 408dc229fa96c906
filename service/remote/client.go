package remote

import (
	"context"

	"github.com/viant/refresher/model/item"
)

// Client calls the remote update service once per item. A call either
// returns a response, fails with a *DomainError carrying a business reason
// code, or fails with an unclassified error.
type Client interface {
	Refresh(ctx context.Context, accountID string, anItem *item.Item, authName string) (*item.Response, error)
}
