package fs

import (
	"context"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/refresher/model/transaction"
	"github.com/viant/refresher/service/dao"
)

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	service, err := New(path.Join(t.TempDir(), "transactions"))
	assert.NoError(t, err)

	id, err := service.Create(ctx, "account-1", "item.refresh")
	assert.NoError(t, err)

	trans, err := service.Get(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, transaction.StatePending, trans.GetState())

	assert.NoError(t, service.MarkFailed(ctx, id, "RATE_LIMITED"))

	// State survives a reload through a fresh service instance.
	reloaded, err := New(service.basePath)
	assert.NoError(t, err)
	trans, err = reloaded.Get(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, transaction.StateFailed, trans.GetState())
	assert.Equal(t, "RATE_LIMITED", trans.GetReason())

	// Terminal writes stay exclusive across instances as well.
	assert.Error(t, reloaded.MarkDone(ctx, id))
}

func TestService_UnknownTransaction(t *testing.T) {
	service, err := New(path.Join(t.TempDir(), "transactions"))
	assert.NoError(t, err)

	// Same sentinel as the memory tracker, detectable via errors.Is.
	_, err = service.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, service.MarkDone(context.Background(), "missing"), dao.ErrNotFound)
}

func TestNew_RequiresBasePath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
