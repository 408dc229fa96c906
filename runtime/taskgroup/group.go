package taskgroup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Semaphore bounds how many sub-tasks of one or more groups run at the same
// time. It is typically created once per engine and shared across every
// group so concurrent transactions draw from the same worker budget.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore admitting up to size concurrent sub-tasks.
func NewSemaphore(size int) Semaphore {
	if size <= 0 {
		size = 1
	}
	return make(Semaphore, size)
}

// Group runs a set of independent sub-tasks under one failure domain. Each
// sub-task is spawned with Go; Wait joins every spawned sub-task before it
// returns, then reports the aggregated failure (if any) according to the
// group's policy.
//
// The first sub-task to fail wins a compare-and-set on the group's error
// slot and triggers cooperative cancellation of its siblings: sub-tasks not
// yet started are skipped, in-flight ones observe the group context at their
// next checkpoint. An in-flight operation that cannot be interrupted is
// allowed to finish; its result simply no longer affects the outcome under
// the default FirstWins policy.
type Group struct {
	parent   context.Context
	ctx      context.Context
	cancelFn context.CancelFunc
	sem      Semaphore
	policy   Policy

	wg    sync.WaitGroup
	first atomic.Pointer[failure]

	mu       sync.Mutex
	failures []error
}

type failure struct {
	err error
}

// Option customises a Group.
type Option func(g *Group)

// WithSemaphore makes the group draw sub-task slots from sem.
func WithSemaphore(sem Semaphore) Option {
	return func(g *Group) { g.sem = sem }
}

// WithPolicy overrides the default FirstWins aggregation policy.
func WithPolicy(policy Policy) Option {
	return func(g *Group) { g.policy = policy }
}

// New creates a group whose sub-tasks run under a context derived from ctx.
// Cancelling the group never cancels ctx itself - failures stop at the
// group's boundary.
func New(ctx context.Context, options ...Option) *Group {
	groupCtx, cancel := context.WithCancel(ctx)
	g := &Group{
		parent:   ctx,
		ctx:      groupCtx,
		cancelFn: cancel,
		policy:   FirstWins(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Context returns the group's context; sub-tasks use it as their
// cancellation checkpoint.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Go spawns fn as a sub-task of the group. fn receives the group context and
// must treat its cancellation as a request to stop at the next checkpoint.
// A panic inside fn is converted into a regular sub-task failure so that it
// cannot escape the group.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		if g.sem != nil {
			select {
			case g.sem <- struct{}{}:
				defer func() { <-g.sem }()
			case <-g.ctx.Done():
				// Sibling failed before this sub-task acquired a slot.
				return
			}
		}
		if g.ctx.Err() != nil {
			return
		}
		g.record(g.run(fn))
	}()
}

func (g *Group) run(fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sub-task panicked: %v", r)
		}
	}()
	return fn(g.ctx)
}

// record stores a sub-task failure and issues the sibling cancellation on
// the first one. Cancellation signals are not failures and never recorded.
func (g *Group) record(err error) {
	if err == nil || isCancellation(err) {
		return
	}
	g.mu.Lock()
	g.failures = append(g.failures, err)
	g.mu.Unlock()

	if g.first.CompareAndSwap(nil, &failure{err: err}) {
		g.cancelFn()
	}
}

// Wait joins every spawned sub-task, then returns nil when none failed or
// the policy-aggregated error otherwise. The terminal decision is made only
// after all sub-tasks reached a final state.
//
// A cancellation of the parent context is not the group's own doing: when no
// sub-task failure was recorded but the parent was cancelled, the sub-tasks
// were stopped from outside and the group did not complete normally, so the
// parent's cause is surfaced instead of nil.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancelFn()

	first := g.first.Load()
	if first == nil {
		if err := context.Cause(g.parent); err != nil {
			return err
		}
		return nil
	}
	g.mu.Lock()
	failures := append([]error(nil), g.failures...)
	g.mu.Unlock()
	return g.policy.Aggregate(first.err, failures)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
