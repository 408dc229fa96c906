package runner

import (
	"github.com/viant/refresher/runtime/taskgroup"
	"github.com/viant/refresher/service/event"
	"github.com/viant/refresher/service/messaging"
	"github.com/viant/refresher/service/persist"
	"github.com/viant/refresher/service/remote"
	"github.com/viant/refresher/service/tracker"
)

// Option customises the runner service
type Option func(s *Service)

// WithQueue sets the refresh job queue
func WithQueue(queue messaging.Queue[Job]) Option {
	return func(s *Service) { s.queue = queue }
}

// WithTracker sets the transaction tracker
func WithTracker(svc tracker.Service) Option {
	return func(s *Service) { s.tracker = svc }
}

// WithRemoteClient sets the remote update client
func WithRemoteClient(client remote.Client) Option {
	return func(s *Service) { s.client = client }
}

// WithPersistence sets the item persistence service
func WithPersistence(svc persist.Service) Option {
	return func(s *Service) { s.persistence = svc }
}

// WithPolicy overrides the default first-wins aggregation policy
func WithPolicy(policy taskgroup.Policy) Option {
	return func(s *Service) { s.policy = policy }
}

// WithEventPublisher sets the lifecycle event publisher
func WithEventPublisher(publisher *event.Publisher[Outcome]) Option {
	return func(s *Service) { s.events = publisher }
}

// WithWorkers sets the number of job workers
func WithWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.config.WorkerCount = count
		}
	}
}

// WithRefreshConcurrency bounds concurrent per-item remote calls
func WithRefreshConcurrency(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.config.RefreshConcurrency = count
		}
	}
}
