package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/gatherly/internal/domain"
)

var _ domain.ChangePublisher = (*Publisher)(nil)

// ChangeJobArgs is the queued form of a domain.Change. It is a full snapshot,
// so the worker never needs to query the database.
type ChangeJobArgs struct {
	Change   string `json:"change"`
	EntityID string `json:"entity_id"`
	EventID  string `json:"event_id"`
	ActorID  string `json:"actor_id,omitempty"`
	Status   string `json:"status"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (ChangeJobArgs) Kind() string { return "change.published" }

// InsertOpts routes change jobs to their own queue.
func (ChangeJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueChanges, MaxAttempts: 5}
}

// Client is the River client type parameterized for database/sql (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.ChangePublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, change domain.Change) error {
	_, err := p.client.Insert(ctx, ChangeJobArgs{
		Change:   string(change.Kind),
		EntityID: change.EntityID,
		EventID:  change.EventID,
		ActorID:  change.ActorID,
		Status:   change.Status,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing change job: %w", err)
	}
	return nil
}

// Discard is a publisher that drops every change. It stands in when
// background jobs are disabled.
type Discard struct{}

func (Discard) Publish(context.Context, domain.Change) error { return nil }
