package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// TracingUsers wraps a domain.UserDirectory with OpenTelemetry tracing.
type TracingUsers struct {
	next   domain.UserDirectory
	tracer trace.Tracer
}

// NewTracingUsers creates a tracing decorator around the given directory.
func NewTracingUsers(next domain.UserDirectory) *TracingUsers {
	return &TracingUsers{next: next, tracer: otel.Tracer(tracerName)}
}

func (d *TracingUsers) User(ctx context.Context, id string) (domain.User, error) {
	ctx, span := d.tracer.Start(ctx, "UserDirectory.User",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	u, err := d.next.User(ctx, id)
	recordError(span, err)
	return u, err
}

// TracingEvents wraps a domain.EventDirectory with OpenTelemetry tracing.
type TracingEvents struct {
	next   domain.EventDirectory
	tracer trace.Tracer
}

// NewTracingEvents creates a tracing decorator around the given directory.
func NewTracingEvents(next domain.EventDirectory) *TracingEvents {
	return &TracingEvents{next: next, tracer: otel.Tracer(tracerName)}
}

func (d *TracingEvents) Snapshot(ctx context.Context, id string) (domain.EventSnapshot, error) {
	ctx, span := d.tracer.Start(ctx, "EventDirectory.Snapshot",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("event.id", id)),
	)
	defer span.End()

	e, err := d.next.Snapshot(ctx, id)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(
			attribute.String("event.state", string(e.State)),
			attribute.Int("event.participant_limit", e.ParticipantLimit),
		)
	}
	return e, err
}
