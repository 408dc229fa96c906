package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/refresher/model/item"
	"github.com/viant/refresher/model/transaction"
	mmemory "github.com/viant/refresher/service/messaging/memory"
	"github.com/viant/refresher/service/persist"
	"github.com/viant/refresher/service/remote"
	"github.com/viant/refresher/service/tracker"
	tmemory "github.com/viant/refresher/service/tracker/memory"
)

// stubClient simulates the remote update service with per-item latency and
// failure injection. When interruptible is false an in-flight call ignores
// cancellation, like a real remote call that cannot be aborted mid-flight.
type stubClient struct {
	latency       map[string]time.Duration
	failures      map[string]error
	interruptible bool
	calls         int32
	completed     int32
}

func (c *stubClient) Refresh(ctx context.Context, accountID string, anItem *item.Item, authName string) (*item.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	if delay := c.latency[anItem.ID]; delay > 0 {
		if c.interruptible {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			time.Sleep(delay)
		}
	}
	defer atomic.AddInt32(&c.completed, 1)
	if err := c.failures[anItem.ID]; err != nil {
		return nil, err
	}
	return &item.Response{ItemID: anItem.ID, FetchedAt: time.Now()}, nil
}

func newTestRunner(t *testing.T, client remote.Client, options ...Option) (*Service, *mmemory.Queue[Job], tracker.Service, *persist.Memory) {
	queue := mmemory.NewQueue[Job](mmemory.DefaultConfig())
	tracking := tmemory.New()
	persistence := persist.NewMemory()
	options = append([]Option{
		WithQueue(queue),
		WithTracker(tracking),
		WithRemoteClient(client),
		WithPersistence(persistence),
		WithWorkers(2),
	}, options...)
	service, err := New(options...)
	assert.NoError(t, err)
	assert.NoError(t, service.Start(context.Background()))
	t.Cleanup(service.Shutdown)
	return service, queue, tracking, persistence
}

func newJob(tracking tracker.Service, items ...*item.Item) (*Job, error) {
	transactionID, err := tracking.Create(context.Background(), "account-1", "item.refresh")
	if err != nil {
		return nil, err
	}
	return &Job{
		TransactionID: transactionID,
		AccountID:     "account-1",
		Auth:          &item.AccountAuth{AccountID: "account-1", AuthName: "primary"},
		Items:         items,
	}, nil
}

func awaitTerminal(t *testing.T, tracking tracker.Service, id string, timeout time.Duration) *transaction.Transaction {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		trans, err := tracking.Get(context.Background(), id)
		assert.NoError(t, err)
		if trans.IsTerminal() {
			return trans
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("transaction %s did not settle within %v", id, timeout)
	return nil
}

func items(count int) []*item.Item {
	var out []*item.Item
	for i := 0; i < count; i++ {
		out = append(out, &item.Item{
			ID:        fmt.Sprintf("item-%d", i),
			AccountID: "account-1",
			Name:      fmt.Sprintf("Item %d", i),
		})
	}
	return out
}

func TestService_AllItemsSucceed(t *testing.T) {
	client := &stubClient{}
	_, queue, tracking, persistence := newTestRunner(t, client)

	testItems := items(4)
	job, err := newJob(tracking, testItems...)
	assert.NoError(t, err)
	assert.NoError(t, queue.Publish(context.Background(), job))

	trans := awaitTerminal(t, tracking, job.TransactionID, 2*time.Second)
	assert.Equal(t, transaction.StateDone, trans.GetState())
	assert.Empty(t, trans.GetReason())
	for _, anItem := range testItems {
		assert.NotNil(t, persistence.Applied(context.Background(), anItem.ID), "item %s not applied", anItem.ID)
	}
}

func TestService_DomainFailure(t *testing.T) {
	client := &stubClient{
		failures: map[string]error{
			"item-1": remote.NewDomainError("RATE_LIMITED", "too many refreshes"),
		},
	}
	_, queue, tracking, _ := newTestRunner(t, client)

	job, err := newJob(tracking, items(3)...)
	assert.NoError(t, err)
	assert.NoError(t, queue.Publish(context.Background(), job))

	trans := awaitTerminal(t, tracking, job.TransactionID, 2*time.Second)
	assert.Equal(t, transaction.StateFailed, trans.GetState())
	assert.Equal(t, "RATE_LIMITED", trans.GetReason())
}

func TestService_UnknownFailure(t *testing.T) {
	client := &stubClient{
		failures: map[string]error{
			"item-0": errors.New("connection reset by peer"),
		},
	}
	_, queue, tracking, _ := newTestRunner(t, client)

	job, err := newJob(tracking, items(2)...)
	assert.NoError(t, err)
	assert.NoError(t, queue.Publish(context.Background(), job))

	trans := awaitTerminal(t, tracking, job.TransactionID, 2*time.Second)
	assert.Equal(t, transaction.StateFailed, trans.GetState())
	assert.Equal(t, remote.ReasonGenericTimeout, trans.GetReason())
}

func TestService_TerminalWriteWaitsForSlowItem(t *testing.T) {
	client := &stubClient{
		latency: map[string]time.Duration{
			"item-1": 400 * time.Millisecond,
		},
		failures: map[string]error{
			"item-0": remote.NewDomainError("ITEM_LOCKED", ""),
		},
	}
	_, queue, tracking, _ := newTestRunner(t, client)

	job, err := newJob(tracking, items(2)...)
	assert.NoError(t, err)
	assert.NoError(t, queue.Publish(context.Background(), job))

	// The fast item already failed, but the slow one is still in flight and
	// cannot be interrupted - the transaction must still read pending.
	time.Sleep(200 * time.Millisecond)
	trans, err := tracking.Get(context.Background(), job.TransactionID)
	assert.NoError(t, err)
	assert.Equal(t, transaction.StatePending, trans.GetState())

	trans = awaitTerminal(t, tracking, job.TransactionID, 2*time.Second)
	assert.Equal(t, transaction.StateFailed, trans.GetState())
	assert.Equal(t, "ITEM_LOCKED", trans.GetReason())
}

func TestService_EmptyItemList(t *testing.T) {
	client := &stubClient{}
	_, queue, tracking, _ := newTestRunner(t, client)

	job, err := newJob(tracking)
	assert.NoError(t, err)
	assert.NoError(t, queue.Publish(context.Background(), job))

	// An empty fan-out joins immediately and settles done.
	trans := awaitTerminal(t, tracking, job.TransactionID, 2*time.Second)
	assert.Equal(t, transaction.StateDone, trans.GetState())
	assert.Equal(t, int32(0), atomic.LoadInt32(&client.calls))
}

func TestService_ShutdownMidJobDoesNotMarkDone(t *testing.T) {
	client := &stubClient{
		latency: map[string]time.Duration{
			"item-0": 5 * time.Second,
			"item-1": 5 * time.Second,
		},
		interruptible: true,
	}
	queue := mmemory.NewQueue[Job](mmemory.DefaultConfig())
	tracking := tmemory.New()
	service, err := New(
		WithQueue(queue),
		WithTracker(tracking),
		WithRemoteClient(client),
		WithPersistence(persist.NewMemory()),
		WithWorkers(1),
	)
	assert.NoError(t, err)
	assert.NoError(t, service.Start(context.Background()))

	job, err := newJob(tracking, items(2)...)
	assert.NoError(t, err)
	assert.NoError(t, queue.Publish(context.Background(), job))

	// Wait until the remote calls are in flight, then stop the service.
	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&client.calls) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&client.calls))
	service.Shutdown()

	// The interrupted refresh never completed, so it must not read done.
	trans, err := tracking.Get(context.Background(), job.TransactionID)
	assert.NoError(t, err)
	assert.Equal(t, transaction.StateFailed, trans.GetState())
	assert.Equal(t, remote.ReasonGenericTimeout, trans.GetReason())
}

type panickyClient struct{}

func (panickyClient) Refresh(context.Context, string, *item.Item, string) (*item.Response, error) {
	panic("remote client blew up")
}

func TestService_PanicDoesNotEscapeWorker(t *testing.T) {
	_, queue, tracking, _ := newTestRunner(t, panickyClient{})

	job, err := newJob(tracking, items(3)...)
	assert.NoError(t, err)
	assert.NoError(t, queue.Publish(context.Background(), job))

	trans := awaitTerminal(t, tracking, job.TransactionID, 2*time.Second)
	assert.Equal(t, transaction.StateFailed, trans.GetState())
	assert.Equal(t, remote.ReasonGenericTimeout, trans.GetReason())
}

func TestService_ConcurrentFanOut(t *testing.T) {
	perItem := 150 * time.Millisecond
	latency := map[string]time.Duration{}
	testItems := items(6)
	for _, anItem := range testItems {
		latency[anItem.ID] = perItem
	}
	client := &stubClient{latency: latency}
	_, queue, tracking, _ := newTestRunner(t, client)

	job, err := newJob(tracking, testItems...)
	assert.NoError(t, err)

	started := time.Now()
	assert.NoError(t, queue.Publish(context.Background(), job))
	trans := awaitTerminal(t, tracking, job.TransactionID, 2*time.Second)
	elapsed := time.Since(started)

	assert.Equal(t, transaction.StateDone, trans.GetState())
	// Bounded near the slowest single item, not the sum of all items.
	assert.Less(t, elapsed, 3*perItem)
}
