package runtime

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vango-dev/mvu/pkg/transport"
	"github.com/vango-dev/mvu/pkg/vdom"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Concurrency selects what happens when Dispatch is called while a cycle is
// already running.
type Concurrency int

const (
	// ConcurrencyQueue serializes cycles: the second call waits.
	ConcurrencyQueue Concurrency = iota

	// ConcurrencyReject fails the overlapping call with ErrCycleInFlight.
	ConcurrencyReject
)

// String returns the configuration name of the policy.
func (c Concurrency) String() string {
	switch c {
	case ConcurrencyQueue:
		return "queue"
	case ConcurrencyReject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseConcurrency parses "queue" or "reject". The empty string selects
// ConcurrencyQueue.
func ParseConcurrency(s string) (Concurrency, error) {
	switch s {
	case "", "queue":
		return ConcurrencyQueue, nil
	case "reject":
		return ConcurrencyReject, nil
	default:
		return 0, fmt.Errorf("runtime: unknown concurrency policy %q", s)
	}
}

const tracerName = "github.com/vango-dev/mvu/pkg/runtime"

type options struct {
	logger      *slog.Logger
	binder      *transport.Binder
	metrics     *Metrics
	tracer      trace.Tracer
	concurrency Concurrency
	rootID      string
}

func defaultOptions() options {
	return options{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		binder:      transport.DefaultBinder(),
		tracer:      otel.Tracer(tracerName),
		concurrency: ConcurrencyQueue,
		rootID:      vdom.DefaultRootID,
	}
}

// Option configures an App.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBinder sets the command transport. The default is id indirection.
func WithBinder(binder *transport.Binder) Option {
	return func(o *options) {
		if binder != nil {
			o.binder = binder
		}
	}
}

// WithMetrics records cycles in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer sets the tracer used for cycle spans. The default uses the
// global otel tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithConcurrency sets the overlapping dispatch policy.
func WithConcurrency(c Concurrency) Option {
	return func(o *options) {
		o.concurrency = c
	}
}

// WithRootID sets the identity of the view root. It must satisfy
// vdom.ValidRootID.
func WithRootID(id string) Option {
	return func(o *options) {
		o.rootID = id
	}
}
