package core

import (
	"context"
	"time"

	"starfieldpedia/internal/catalog"
	"starfieldpedia/pkg/domain"
)

// Logger is the structured logging contract the service writes to.
// *logger.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// MetricsRecorder observes the outcome and duration of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation's error, if any.
type TraceSpan interface {
	End(err error)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger routes service logs to l.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the clock used to stamp loads.
func WithClock(c Clock) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMetricsRecorder records operation outcomes.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer wraps operations in spans.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithCatalog sets the resource catalog used for metadata and suggestions.
func WithCatalog(c *catalog.Catalog) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithSnapshotStore persists every successful load and enables Restore.
func WithSnapshotStore(store domain.SnapshotStore) ServiceOption {
	return func(s *Service) { s.snapshots = store }
}

// WithPrefix limits loading to document keys under prefix.
func WithPrefix(prefix string) ServiceOption {
	return func(s *Service) { s.prefix = prefix }
}

// WithGenerations overrides the generation id source.
func WithGenerations(next func() string) ServiceOption {
	return func(s *Service) {
		if next != nil {
			s.nextGeneration = next
		}
	}
}
