package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/gatherly/internal/domain"
)

const tracerName = "github.com/neomorfeo/gatherly/internal/adapter/otel"

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// TracingRequestRepository wraps a domain.RequestRepository with OpenTelemetry
// tracing. Stores handed to WithinEvent callbacks are traced too, so their
// spans nest under the unit of work.
type TracingRequestRepository struct {
	tracingRequestStore
	next domain.RequestRepository
}

var _ domain.RequestRepository = (*TracingRequestRepository)(nil)

// NewTracingRequestRepository creates a tracing decorator around the given repository.
func NewTracingRequestRepository(next domain.RequestRepository) *TracingRequestRepository {
	return &TracingRequestRepository{
		tracingRequestStore: tracingRequestStore{next: next, tracer: otel.Tracer(tracerName)},
		next:                next,
	}
}

func (r *TracingRequestRepository) WithinEvent(
	ctx context.Context,
	eventID string,
	fn func(ctx context.Context, store domain.RequestStore) error,
) error {
	ctx, span := r.tracer.Start(ctx, "RequestRepository.WithinEvent",
		trace.WithAttributes(attribute.String("event.id", eventID)),
	)
	defer span.End()

	err := r.next.WithinEvent(ctx, eventID, func(ctx context.Context, store domain.RequestStore) error {
		return fn(ctx, tracingRequestStore{next: store, tracer: r.tracer})
	})
	recordError(span, err)
	return err
}

type tracingRequestStore struct {
	next   domain.RequestStore
	tracer trace.Tracer
}

func (s tracingRequestStore) Get(ctx context.Context, id string) (domain.ParticipationRequest, error) {
	ctx, span := s.tracer.Start(ctx, "RequestRepository.Get",
		trace.WithAttributes(attribute.String("request.id", id)),
	)
	defer span.End()

	r, err := s.next.Get(ctx, id)
	recordError(span, err)
	return r, err
}

func (s tracingRequestStore) FindByRequester(ctx context.Context, requesterID string) ([]domain.ParticipationRequest, error) {
	ctx, span := s.tracer.Start(ctx, "RequestRepository.FindByRequester",
		trace.WithAttributes(attribute.String("user.id", requesterID)),
	)
	defer span.End()

	rs, err := s.next.FindByRequester(ctx, requesterID)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(rs)))
	}
	return rs, err
}

func (s tracingRequestStore) FindByEvent(ctx context.Context, eventID string) ([]domain.ParticipationRequest, error) {
	ctx, span := s.tracer.Start(ctx, "RequestRepository.FindByEvent",
		trace.WithAttributes(attribute.String("event.id", eventID)),
	)
	defer span.End()

	rs, err := s.next.FindByEvent(ctx, eventID)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(rs)))
	}
	return rs, err
}

func (s tracingRequestStore) CountByEventAndStatus(ctx context.Context, eventID string, status domain.RequestStatus) (int, error) {
	ctx, span := s.tracer.Start(ctx, "RequestRepository.CountByEventAndStatus",
		trace.WithAttributes(
			attribute.String("event.id", eventID),
			attribute.String("request.status", string(status)),
		),
	)
	defer span.End()

	n, err := s.next.CountByEventAndStatus(ctx, eventID, status)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", n))
	}
	return n, err
}

func (s tracingRequestStore) ExistsActive(ctx context.Context, requesterID, eventID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "RequestRepository.ExistsActive",
		trace.WithAttributes(
			attribute.String("user.id", requesterID),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	ok, err := s.next.ExistsActive(ctx, requesterID, eventID)
	recordError(span, err)
	return ok, err
}

func (s tracingRequestStore) Save(ctx context.Context, r domain.ParticipationRequest) error {
	ctx, span := s.tracer.Start(ctx, "RequestRepository.Save",
		trace.WithAttributes(
			attribute.String("request.id", r.ID),
			attribute.String("request.status", string(r.Status)),
		),
	)
	defer span.End()

	err := s.next.Save(ctx, r)
	recordError(span, err)
	return err
}

func (s tracingRequestStore) SaveAll(ctx context.Context, rs []domain.ParticipationRequest) error {
	ctx, span := s.tracer.Start(ctx, "RequestRepository.SaveAll",
		trace.WithAttributes(attribute.Int("request.count", len(rs))),
	)
	defer span.End()

	err := s.next.SaveAll(ctx, rs)
	recordError(span, err)
	return err
}

// TracingCommentRepository wraps a domain.CommentRepository with OpenTelemetry tracing.
type TracingCommentRepository struct {
	next   domain.CommentRepository
	tracer trace.Tracer
}

var _ domain.CommentRepository = (*TracingCommentRepository)(nil)

// NewTracingCommentRepository creates a tracing decorator around the given repository.
func NewTracingCommentRepository(next domain.CommentRepository) *TracingCommentRepository {
	return &TracingCommentRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingCommentRepository) Create(ctx context.Context, c domain.Comment) error {
	ctx, span := r.tracer.Start(ctx, "CommentRepository.Create",
		trace.WithAttributes(
			attribute.String("comment.id", c.ID),
			attribute.String("event.id", c.EventID),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, c)
	recordError(span, err)
	return err
}

func (r *TracingCommentRepository) Get(ctx context.Context, id string) (domain.Comment, error) {
	ctx, span := r.tracer.Start(ctx, "CommentRepository.Get",
		trace.WithAttributes(attribute.String("comment.id", id)),
	)
	defer span.End()

	c, err := r.next.Get(ctx, id)
	recordError(span, err)
	return c, err
}

func (r *TracingCommentRepository) GetByAuthor(ctx context.Context, id, authorID string) (domain.Comment, error) {
	ctx, span := r.tracer.Start(ctx, "CommentRepository.GetByAuthor",
		trace.WithAttributes(
			attribute.String("comment.id", id),
			attribute.String("user.id", authorID),
		),
	)
	defer span.End()

	c, err := r.next.GetByAuthor(ctx, id, authorID)
	recordError(span, err)
	return c, err
}

func (r *TracingCommentRepository) Update(ctx context.Context, c domain.Comment, expected domain.CommentStatus) error {
	ctx, span := r.tracer.Start(ctx, "CommentRepository.Update",
		trace.WithAttributes(
			attribute.String("comment.id", c.ID),
			attribute.String("comment.status", string(c.Status)),
			attribute.String("comment.expected_status", string(expected)),
		),
	)
	defer span.End()

	err := r.next.Update(ctx, c, expected)
	recordError(span, err)
	return err
}

func (r *TracingCommentRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "CommentRepository.Delete",
		trace.WithAttributes(attribute.String("comment.id", id)),
	)
	defer span.End()

	err := r.next.Delete(ctx, id)
	recordError(span, err)
	return err
}

func (r *TracingCommentRepository) FindByEventAndStatus(ctx context.Context, eventID string, status domain.CommentStatus) ([]domain.Comment, error) {
	ctx, span := r.tracer.Start(ctx, "CommentRepository.FindByEventAndStatus",
		trace.WithAttributes(
			attribute.String("event.id", eventID),
			attribute.String("comment.status", string(status)),
		),
	)
	defer span.End()

	cs, err := r.next.FindByEventAndStatus(ctx, eventID, status)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(cs)))
	}
	return cs, err
}

func (r *TracingCommentRepository) FindApprovedByEvent(ctx context.Context, eventID string, page domain.Page) ([]domain.Comment, error) {
	ctx, span := r.tracer.Start(ctx, "CommentRepository.FindApprovedByEvent",
		trace.WithAttributes(
			attribute.String("event.id", eventID),
			attribute.Int("page.from", page.From),
			attribute.Int("page.size", page.Size),
		),
	)
	defer span.End()

	cs, err := r.next.FindApprovedByEvent(ctx, eventID, page)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(cs)))
	}
	return cs, err
}

func (r *TracingCommentRepository) Search(ctx context.Context, search domain.CommentSearch) ([]domain.Comment, error) {
	ctx, span := r.tracer.Start(ctx, "CommentRepository.Search",
		trace.WithAttributes(
			attribute.Int("page.from", search.Page.From),
			attribute.Int("page.size", search.Page.Size),
		),
	)
	defer span.End()

	if v, ok := search.Status.Get(); ok {
		span.SetAttributes(attribute.String("filter.status", string(v)))
	}
	if v, ok := search.EventID.Get(); ok {
		span.SetAttributes(attribute.String("filter.event_id", v))
	}
	if v, ok := search.AuthorID.Get(); ok {
		span.SetAttributes(attribute.String("filter.author_id", v))
	}

	cs, err := r.next.Search(ctx, search)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(cs)))
	}
	return cs, err
}
