package refresher

import (
	"github.com/viant/refresher/runtime/taskgroup"
	"github.com/viant/refresher/service/auth"
	"github.com/viant/refresher/service/event"
	"github.com/viant/refresher/service/messaging"
	"github.com/viant/refresher/service/persist"
	"github.com/viant/refresher/service/remote"
	"github.com/viant/refresher/service/runner"
	"github.com/viant/refresher/service/source"
	"github.com/viant/refresher/service/tracker"
	"github.com/viant/refresher/tracing"
)

// Option customises the engine façade
type Option func(s *Service)

// WithConfig sets the engine configuration
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithQueue sets the refresh job queue
func WithQueue(queue messaging.Queue[runner.Job]) Option {
	return func(s *Service) { s.queue = queue }
}

// WithTracker sets the transaction tracker
func WithTracker(svc tracker.Service) Option {
	return func(s *Service) { s.tracker = svc }
}

// WithItemSource sets the item source
func WithItemSource(svc source.Service) Option {
	return func(s *Service) { s.source = svc }
}

// WithAuthLookup sets the account auth lookup
func WithAuthLookup(svc auth.Service) Option {
	return func(s *Service) { s.auth = svc }
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
func WithEventPublisher(publisher *event.Publisher[runner.Outcome]) Option {
	return func(s *Service) { s.events = publisher }
}

// WithTracing configures OpenTelemetry tracing for the engine. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}
