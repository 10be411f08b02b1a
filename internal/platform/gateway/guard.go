// Package gateway guards outbound calls to the ledger and blob services with
// a deadline, a circuit breaker, a trace span and a latency histogram.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"casevault/internal/platform/metrics"
	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/circuit"
	"casevault/pkg/platform/sentinel"
)

const DefaultTimeout = 30 * time.Second

type Guard struct {
	name    string
	timeout time.Duration
	breaker *circuit.Breaker[any]
	tracer  trace.Tracer
	metrics *metrics.Metrics
}

type Option func(*Guard)

func WithTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(g *Guard) {
		g.tracer = t
	}
}

// NewGuard builds a guard named after the gateway it protects. Rejections and
// missing records do not trip the breaker; the remote answered. A caller that
// goes away mid-call is not counted at all.
func NewGuard(name string, logger *slog.Logger, opts ...Option) *Guard {
	g := &Guard{
		name:    name,
		timeout: DefaultTimeout,
		tracer:  otel.Tracer("casevault/gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.breaker = circuit.New[any](name,
		circuit.WithSuccessClassifier(func(err error) bool {
			return err == nil || errors.Is(err, sentinel.ErrRejected) || errors.Is(err, sentinel.ErrNotFound)
		}),
		circuit.WithExclusion(func(err error) bool {
			return errors.Is(err, context.Canceled)
		}),
		circuit.WithOnStateChange(func(name string, from, to circuit.State) {
			if logger != nil {
				logger.Warn("gateway circuit state changed", "gateway", name, "from", string(from), "to", string(to))
			}
			if g.metrics != nil {
				g.metrics.SetBreakerState(name, string(to))
			}
		}),
	)
	return g
}

func (g *Guard) Name() string { return g.name }

func (g *Guard) State() circuit.State { return g.breaker.State() }

// Do runs fn under the guard and translates failures into domain errors.
// Calls are never retried.
func Do[T any](ctx context.Context, g *Guard, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := g.tracer.Start(ctx, g.name+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gateway.name", g.name),
			attribute.String("gateway.operation", op),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	res, err := g.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
	if g.metrics != nil {
		g.metrics.ObserveGateway(g.name, op, start, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var zero T
		return zero, g.translate(err)
	}
	out, _ := res.(T)
	return out, nil
}

func (g *Guard) translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, g.name+": no matching record")
	case errors.Is(err, sentinel.ErrRejected):
		return dErrors.Wrap(err, dErrors.CodeLedgerRejected, g.name+" rejected the request")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, g.name+" timed out")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, g.name+" is unavailable")
}
