package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/refresher/internal/clock"
	"github.com/viant/refresher/model/item"
	"github.com/viant/refresher/model/transaction"
	"github.com/viant/refresher/runtime/taskgroup"
	"github.com/viant/refresher/service/event"
	"github.com/viant/refresher/service/messaging"
	"github.com/viant/refresher/service/persist"
	"github.com/viant/refresher/service/remote"
	"github.com/viant/refresher/service/tracker"
	"github.com/viant/refresher/tracing"
)

// Config represents runner service configuration
type Config struct {
	// WorkerCount is the number of workers consuming refresh jobs
	WorkerCount int

	// RefreshConcurrency bounds how many per-item remote calls run at the
	// same time across all jobs
	RefreshConcurrency int
}

// DefaultConfig returns the default runner configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount:        5,
		RefreshConcurrency: 25,
	}
}

// Service executes refresh jobs detached from the call that initiated them.
// Workers consume jobs from the queue under service-owned contexts, so a
// caller returning (or being cancelled) never aborts a job in flight. For
// each job the service opens one task group over the job's items, joins it,
// and converts the outcome into exactly one terminal transaction write -
// no failure of any kind escapes a worker.
type Service struct {
	config      Config
	queue       messaging.Queue[Job]
	tracker     tracker.Service
	client      remote.Client
	persistence persist.Service
	policy      taskgroup.Policy
	events      *event.Publisher[Outcome]

	// shared across all jobs so concurrent transactions draw from one budget
	sem taskgroup.Semaphore

	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a new runner service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		policy:     taskgroup.FirstWins(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.queue == nil {
		return nil, fmt.Errorf("job queue is required")
	}
	if s.tracker == nil {
		return nil, fmt.Errorf("transaction tracker is required")
	}
	if s.client == nil {
		return nil, fmt.Errorf("remote client is required")
	}
	if s.persistence == nil {
		return nil, fmt.Errorf("persistence service is required")
	}
	s.sem = taskgroup.NewSemaphore(s.config.RefreshConcurrency)
	return s, nil
}

// Start begins consuming refresh jobs. Worker contexts are detached from
// ctx's cancellation tree: values (tracing metadata) flow through, but a
// cancelled initiator can no longer reach the background work. Only
// Shutdown stops the workers.
func (s *Service) Start(ctx context.Context) error {
	base := context.WithoutCancel(ctx)
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(base)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}
	return nil
}

// run processes jobs from the queue
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		// Block until we either get a message or the context is cancelled.
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			// Context was cancelled – graceful shutdown.
			if errors.Is(err, context.Canceled) {
				return
			}
			// Transient error (e.g. queue closed); back off a bit.
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			continue
		}
		if pErr := w.service.processMessage(w.ctx, msg); pErr != nil {
			log.Printf("runner worker %d: failed to process message: %v", w.id, pErr)
		}
	}
}

// processMessage handles a single refresh job. The job itself never fails
// the message: every outcome, including a panic, is settled on the tracker,
// so the message is always acknowledged.
func (s *Service) processMessage(ctx context.Context, message messaging.Message[Job]) error {
	job := message.T()
	s.run(ctx, job)
	return message.Ack()
}

// run is the top-level error boundary of one refresh job. Every reachable
// path ends in exactly one MarkDone or MarkFailed; a second terminal write
// is rejected by the transaction state machine, which keeps the recover
// path safe even when the panic happened mid-settlement.
func (s *Service) run(ctx context.Context, job *Job) {
	started := clock.Now()
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("runner.transaction %s", job.TransactionID), "CONSUMER")
	span.WithAttributes(map[string]string{
		"transaction.id": job.TransactionID,
		"account.id":     job.AccountID,
	})
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh job panicked: %v", r)
			s.settle(ctx, job, started, err)
		}
		tracing.EndSpan(span, err)
	}()

	err = s.refreshAll(ctx, job)
	s.settle(ctx, job, started, err)
}

// refreshAll fans out one sub-task per item and joins all of them. The
// group enforces the first-failure policy and sibling cancellation; Wait
// does not return until every spawned sub-task reached a final state.
func (s *Service) refreshAll(ctx context.Context, job *Job) error {
	group := taskgroup.New(ctx,
		taskgroup.WithSemaphore(s.sem),
		taskgroup.WithPolicy(s.policy),
	)
	for _, anItem := range job.Items {
		group.Go(func(taskCtx context.Context) error {
			return s.refreshOne(taskCtx, job, anItem)
		})
	}
	return group.Wait()
}

// refreshOne performs the remote call for a single item and applies the
// response locally; a persistence failure counts as the sub-task's failure.
func (s *Service) refreshOne(ctx context.Context, job *Job, anItem *item.Item) error {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("runner.refresh %s", anItem.ID), "CLIENT")
	var err error
	defer func() {
		tracing.EndSpan(span, err)
	}()

	authName := ""
	if job.Auth != nil {
		authName = job.Auth.AuthName
	}
	var response *item.Response
	if response, err = s.client.Refresh(ctx, job.AccountID, anItem, authName); err != nil {
		err = fmt.Errorf("failed to refresh item %s: %w", anItem.ID, err)
		return err
	}
	if err = s.persistence.Apply(ctx, anItem, response); err != nil {
		err = fmt.Errorf("failed to apply refresh of item %s: %w", anItem.ID, err)
		return err
	}
	return nil
}

// settle writes the terminal transaction state and publishes the matching
// lifecycle event.
func (s *Service) settle(ctx context.Context, job *Job, started time.Time, err error) {
	outcome := &Outcome{
		TransactionID: job.TransactionID,
		AccountID:     job.AccountID,
		Items:         len(job.Items),
	}
	eventType := event.TypeDone
	if err == nil {
		outcome.State = transaction.StateDone
		if mErr := s.tracker.MarkDone(ctx, job.TransactionID); mErr != nil {
			log.Printf("runner: failed to mark transaction %s done: %v", job.TransactionID, mErr)
		}
	} else {
		eventType = event.TypeFailed
		outcome.State = transaction.StateFailed
		outcome.Reason = remote.Classify(err)
		if mErr := s.tracker.MarkFailed(ctx, job.TransactionID, outcome.Reason); mErr != nil {
			log.Printf("runner: failed to mark transaction %s failed: %v", job.TransactionID, mErr)
		}
	}
	if s.events != nil {
		_ = s.events.Publish(ctx, event.NewEvent(&event.Context{
			TransactionID: job.TransactionID,
			AccountID:     job.AccountID,
			EventType:     eventType,
			TimeTakenMs:   int(clock.Now().Sub(started) / time.Millisecond),
		}, *outcome))
	}
}

// Shutdown stops the runner service
func (s *Service) Shutdown() {
	close(s.shutdownCh)
	for _, worker := range s.workers {
		worker.cancelFn()
	}
	s.workerWg.Wait()
}
