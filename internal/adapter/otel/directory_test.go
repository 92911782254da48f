package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	adapter "github.com/neomorfeo/gatherly/internal/adapter/otel"
	"github.com/neomorfeo/gatherly/internal/domain"
)

type stubDirectory struct {
	err error
}

func (s stubDirectory) User(_ context.Context, id string) (domain.User, error) {
	return domain.User{ID: id}, s.err
}

func (s stubDirectory) Snapshot(_ context.Context, id string) (domain.EventSnapshot, error) {
	return domain.EventSnapshot{ID: id, State: domain.EventPublished, ParticipantLimit: 4}, s.err
}

func TestTracingEvents_Snapshot_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	dir := adapter.NewTracingEvents(stubDirectory{})

	if _, err := dir.Snapshot(context.Background(), "e-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].SpanKind != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", spans[0].SpanKind)
	}
	assertAttribute(t, spans[0], "event.state", "PUBLISHED")
	assertAttribute(t, spans[0], "event.participant_limit", "4")
}

func TestTracingUsers_User_RecordsUnavailable(t *testing.T) {
	exporter := setupTestTracer(t)
	down := &domain.UnavailableError{Directory: domain.EntityUser, ID: "u-1", Err: errors.New("timeout")}
	dir := adapter.NewTracingUsers(stubDirectory{err: down})

	_, err := dir.User(context.Background(), "u-1")
	if !errors.As(err, &down) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Status.Code != codes.Error {
		t.Fatalf("expected one errored span, got %+v", spans)
	}
}
