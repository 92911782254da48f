package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// TracingPublisher wraps a domain.ChangePublisher with OpenTelemetry tracing
// and counts published changes by kind and outcome.
type TracingPublisher struct {
	next      domain.ChangePublisher
	tracer    trace.Tracer
	published metric.Int64Counter
}

var _ domain.ChangePublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.ChangePublisher) (*TracingPublisher, error) {
	counter, err := otel.Meter(tracerName).Int64Counter("gatherly.changes.published",
		metric.WithDescription("Changes handed to the job queue."),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, err
	}

	return &TracingPublisher{
		next:      next,
		tracer:    otel.Tracer(tracerName),
		published: counter,
	}, nil
}

func (p *TracingPublisher) Publish(ctx context.Context, change domain.Change) error {
	ctx, span := p.tracer.Start(ctx, "ChangePublisher.Publish",
		trace.WithAttributes(
			attribute.String("change.kind", string(change.Kind)),
			attribute.String("change.entity_id", change.EntityID),
			attribute.String("event.id", change.EventID),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, change)
	recordError(span, err)

	p.published.Add(ctx, 1, metric.WithAttributes(
		attribute.String("change.kind", string(change.Kind)),
		attribute.Bool("error", err != nil),
	))
	return err
}
