package refresher

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/refresher/model/transaction"
	"github.com/viant/refresher/runtime/taskgroup"
	"github.com/viant/refresher/service/auth"
	"github.com/viant/refresher/service/event"
	"github.com/viant/refresher/service/messaging"
	mmemory "github.com/viant/refresher/service/messaging/memory"
	"github.com/viant/refresher/service/persist"
	"github.com/viant/refresher/service/remote"
	rhttp "github.com/viant/refresher/service/remote/http"
	"github.com/viant/refresher/service/runner"
	"github.com/viant/refresher/service/source"
	"github.com/viant/refresher/service/tracker"
	tmemory "github.com/viant/refresher/service/tracker/memory"
	"github.com/viant/refresher/tracing"
)

// KindItemRefresh is the transaction kind recorded for account item
// refreshes.
const KindItemRefresh = "item.refresh"

// Service is the engine façade. InitiateRefresh performs only the
// synchronous setup - create transaction, resolve auth, list items - then
// publishes a job onto the engine queue and returns the transaction id; the
// runner executes the fan-out detached from the caller.
type Service struct {
	config      *Config
	queue       messaging.Queue[runner.Job]
	tracker     tracker.Service
	source      source.Service
	auth        auth.Service
	client      remote.Client
	persistence persist.Service
	policy      taskgroup.Policy
	events      *event.Publisher[runner.Outcome]
	runner      *runner.Service
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.source == nil {
		return fmt.Errorf("item source is required")
	}
	if s.auth == nil {
		return fmt.Errorf("auth lookup is required")
	}
	if s.client == nil {
		return fmt.Errorf("remote client is required")
	}

	runnerOptions := []runner.Option{
		runner.WithQueue(s.queue),
		runner.WithTracker(s.tracker),
		runner.WithRemoteClient(s.client),
		runner.WithPersistence(s.persistence),
		runner.WithPolicy(s.policy),
		runner.WithWorkers(s.config.Runner.Workers),
		runner.WithRefreshConcurrency(s.config.Runner.RefreshConcurrency),
	}
	if s.events != nil {
		runnerOptions = append(runnerOptions, runner.WithEventPublisher(s.events))
	}
	var err error
	s.runner, err = runner.New(runnerOptions...)
	return err
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[runner.Job](mmemory.DefaultConfig())
	}
	if s.tracker == nil {
		s.tracker = tmemory.New()
	}
	if s.persistence == nil {
		s.persistence = persist.NewMemory()
	}
	if s.policy == nil {
		s.policy = taskgroup.FirstWins()
	}
	if s.client == nil && s.config.Remote.BaseURL != "" {
		s.client = rhttp.New(s.config.Remote.BaseURL, time.Duration(s.config.Remote.TimeoutMs)*time.Millisecond)
	}
}

// New creates the engine façade
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

// Start begins consuming refresh jobs in the background.
func (s *Service) Start(ctx context.Context) error {
	return s.runner.Start(ctx)
}

// Shutdown stops the background workers, waiting for in-flight jobs.
func (s *Service) Shutdown() {
	s.runner.Shutdown()
}

// Tracker exposes the transaction tracker.
func (s *Service) Tracker() tracker.Service {
	return s.tracker
}

// Transaction returns a snapshot of a transaction.
func (s *Service) Transaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	return s.tracker.Get(ctx, id)
}

// InitiateRefresh creates a pending transaction for the account, performs
// the synchronous lookups and hands the work over to the runner. It returns
// the transaction id before any remote call completes; failure of the
// background work is only ever visible through the transaction's terminal
// state, never through this call.
func (s *Service) InitiateRefresh(ctx context.Context, accountID string) (transactionID string, err error) {
	ctx, span := tracing.StartSpan(ctx, "refresher.InitiateRefresh", "SERVER")
	defer func() {
		tracing.EndSpan(span, err)
	}()
	span.WithAttributes(map[string]string{"account.id": accountID})

	transactionID, err = s.tracker.Create(ctx, accountID, KindItemRefresh)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	span.WithAttributes(map[string]string{"transaction.id": transactionID})

	accountAuth, err := s.auth.Resolve(ctx, accountID)
	if err != nil {
		err = fmt.Errorf("failed to resolve auth for account %s: %w", accountID, err)
		s.abort(ctx, transactionID, err)
		return "", err
	}
	items, err := s.source.ListItems(ctx, accountID)
	if err != nil {
		err = fmt.Errorf("failed to list items for account %s: %w", accountID, err)
		s.abort(ctx, transactionID, err)
		return "", err
	}

	job := &runner.Job{
		TransactionID: transactionID,
		AccountID:     accountID,
		Auth:          accountAuth,
		Items:         items,
	}
	if err = s.queue.Publish(ctx, job); err != nil {
		err = fmt.Errorf("failed to publish refresh job: %w", err)
		s.abort(ctx, transactionID, err)
		return "", err
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, event.NewEvent(&event.Context{
			TransactionID: transactionID,
			AccountID:     accountID,
			EventType:     event.TypeInitiated,
		}, runner.Outcome{
			TransactionID: transactionID,
			AccountID:     accountID,
			State:         transaction.StatePending,
			Items:         len(items),
		}))
	}
	return transactionID, nil
}

// abort settles a transaction whose synchronous setup failed, so that no
// transaction is left pending with no job behind it. The caller still
// receives the setup error directly.
func (s *Service) abort(ctx context.Context, transactionID string, err error) {
	_ = s.tracker.MarkFailed(ctx, transactionID, remote.Classify(err))
}
