package sqlite_test

import (
	"context"
	"testing"

	"github.com/neomorfeo/gatherly/internal/adapter/sqlite"
	"github.com/neomorfeo/gatherly/internal/domain"
)

func TestDirectory(t *testing.T) {
	dir := sqlite.NewDirectory(newTestDB(t))
	ctx := context.Background()

	if err := dir.PutUser(ctx, domain.User{ID: "u-1", Name: "Ada"}); err != nil {
		t.Fatalf("PutUser failed: %v", err)
	}
	event := domain.EventSnapshot{
		ID:                "e-1",
		State:             domain.EventPublished,
		ParticipantLimit:  10,
		RequestModeration: true,
		InitiatorID:       "u-1",
	}
	if err := dir.PutEvent(ctx, event); err != nil {
		t.Fatalf("PutEvent failed: %v", err)
	}

	u, err := dir.User(ctx, "u-1")
	if err != nil {
		t.Fatalf("User failed: %v", err)
	}
	if u.Name != "Ada" {
		t.Errorf("Name = %q, want Ada", u.Name)
	}

	got, err := dir.Snapshot(ctx, "e-1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if got != event {
		t.Errorf("Snapshot = %+v, want %+v", got, event)
	}

	event.State = domain.EventCanceled
	if err := dir.PutEvent(ctx, event); err != nil {
		t.Fatalf("PutEvent update failed: %v", err)
	}
	got, _ = dir.Snapshot(ctx, "e-1")
	if got.State != domain.EventCanceled {
		t.Errorf("State = %q, want CANCELED", got.State)
	}

	if _, err := dir.User(ctx, "nobody"); !domain.IsNotFound(err) {
		t.Errorf("expected user not found, got %v", err)
	}
	if _, err := dir.Snapshot(ctx, "nothing"); !domain.IsNotFound(err) {
		t.Errorf("expected event not found, got %v", err)
	}
}
