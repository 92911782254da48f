package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// RequestRepository implements domain.RequestRepository using SQLite.
type RequestRepository struct {
	requestStore
	db *DB
}

// NewRequestRepository returns a repository over an opened database.
func NewRequestRepository(db *DB) *RequestRepository {
	return &RequestRepository{
		requestStore: requestStore{q: db.db},
		db:           db,
	}
}

// WithinEvent runs fn in one transaction. The pool holds a single
// connection, so units of work for any event never overlap.
func (r *RequestRepository) WithinEvent(
	ctx context.Context,
	_ string,
	fn func(ctx context.Context, store domain.RequestStore) error,
) error {
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		return fn(ctx, requestStore{q: tx})
	})
}

type requestStore struct {
	q querier
}

const requestColumns = `id, event_id, requester_id, status, created`

func (s requestStore) Get(ctx context.Context, id string) (domain.ParticipationRequest, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)

	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ParticipationRequest{}, domain.NotFound(domain.EntityRequest, id)
	}
	return r, err
}

func (s requestStore) FindByRequester(ctx context.Context, requesterID string) ([]domain.ParticipationRequest, error) {
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE requester_id = ? ORDER BY created, id`,
		requesterID)
}

func (s requestStore) FindByEvent(ctx context.Context, eventID string) ([]domain.ParticipationRequest, error) {
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE event_id = ? ORDER BY created, id`,
		eventID)
}

func (s requestStore) CountByEventAndStatus(ctx context.Context, eventID string, status domain.RequestStatus) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requests WHERE event_id = ? AND status = ?`,
		eventID, string(status),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting requests: %w", err)
	}
	return n, nil
}

func (s requestStore) ExistsActive(ctx context.Context, requesterID, eventID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM requests
			WHERE requester_id = ? AND event_id = ? AND status <> ?
		)`,
		requesterID, eventID, string(domain.RequestCanceled),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking active request: %w", err)
	}
	return exists, nil
}

func (s requestStore) Save(ctx context.Context, r domain.ParticipationRequest) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO requests (id, event_id, requester_id, status, created)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET status = excluded.status`,
		r.ID, r.EventID, r.RequesterID, string(r.Status), formatTime(r.Created),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRequest
		}
		return fmt.Errorf("saving request: %w", err)
	}
	return nil
}

func (s requestStore) SaveAll(ctx context.Context, rs []domain.ParticipationRequest) error {
	for _, r := range rs {
		if err := s.Save(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s requestStore) list(ctx context.Context, query string, args ...any) ([]domain.ParticipationRequest, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var out []domain.ParticipationRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (domain.ParticipationRequest, error) {
	var r domain.ParticipationRequest
	var status, created string

	if err := row.Scan(&r.ID, &r.EventID, &r.RequesterID, &status, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ParticipationRequest{}, err
		}
		return domain.ParticipationRequest{}, fmt.Errorf("scanning request: %w", err)
	}

	r.Status = domain.RequestStatus(status)
	r.Created = parseTime(created)
	return r, nil
}
