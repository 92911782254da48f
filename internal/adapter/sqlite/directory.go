package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// Directory serves users and event snapshots from local tables. It stands in
// for the remote user and event services in single-node deployments.
type Directory struct {
	db *sql.DB
}

// NewDirectory returns a directory over an opened database.
func NewDirectory(db *DB) *Directory {
	return &Directory{db: db.db}
}

func (d *Directory) User(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := d.db.QueryRowContext(ctx, `SELECT id, name FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.NotFound(domain.EntityUser, id)
	}
	if err != nil {
		return domain.User{}, &domain.UnavailableError{Directory: domain.EntityUser, ID: id, Err: err}
	}
	return u, nil
}

func (d *Directory) Snapshot(ctx context.Context, id string) (domain.EventSnapshot, error) {
	var e domain.EventSnapshot
	var state string

	err := d.db.QueryRowContext(ctx,
		`SELECT id, state, participant_limit, request_moderation, initiator_id
		 FROM events WHERE id = ?`, id,
	).Scan(&e.ID, &state, &e.ParticipantLimit, &e.RequestModeration, &e.InitiatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EventSnapshot{}, domain.NotFound(domain.EntityEvent, id)
	}
	if err != nil {
		return domain.EventSnapshot{}, &domain.UnavailableError{Directory: domain.EntityEvent, ID: id, Err: err}
	}

	e.State = domain.EventState(state)
	return e, nil
}

// PutUser inserts or replaces a user.
func (d *Directory) PutUser(ctx context.Context, u domain.User) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users (id, name) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
		u.ID, u.Name)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// PutEvent inserts or replaces an event snapshot.
func (d *Directory) PutEvent(ctx context.Context, e domain.EventSnapshot) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO events (id, state, participant_limit, request_moderation, initiator_id)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			state = excluded.state,
			participant_limit = excluded.participant_limit,
			request_moderation = excluded.request_moderation,
			initiator_id = excluded.initiator_id`,
		e.ID, string(e.State), e.ParticipantLimit, e.RequestModeration, e.InitiatorID)
	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}
