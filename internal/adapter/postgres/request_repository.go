package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/neomorfeo/gatherly/internal/domain"
)

var activeStatuses = []string{
	string(domain.RequestPending),
	string(domain.RequestConfirmed),
	string(domain.RequestRejected),
}

// RequestRepository implements domain.RequestRepository using PostgreSQL.
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

// WithinEvent takes a transaction-scoped advisory lock keyed by the event id,
// so units of work for one event run one at a time across every replica.
func (r *RequestRepository) WithinEvent(
	ctx context.Context,
	eventID string,
	fn func(ctx context.Context, store domain.RequestStore) error,
) error {
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, eventID); err != nil {
			return fmt.Errorf("locking event: %w", err)
		}
		return fn(ctx, requestStore{q: tx})
	})
}

type requestStore struct {
	q querier
}

const requestColumns = `id, event_id, requester_id, status, created`

func (s requestStore) Get(ctx context.Context, id string) (domain.ParticipationRequest, error) {
	r, err := scanRequest(s.q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ParticipationRequest{}, domain.NotFound(domain.EntityRequest, id)
	}
	return r, err
}

func (s requestStore) FindByRequester(ctx context.Context, requesterID string) ([]domain.ParticipationRequest, error) {
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE requester_id = $1 ORDER BY created, id`,
		requesterID)
}

func (s requestStore) FindByEvent(ctx context.Context, eventID string) ([]domain.ParticipationRequest, error) {
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE event_id = $1 ORDER BY created, id`,
		eventID)
}

func (s requestStore) CountByEventAndStatus(ctx context.Context, eventID string, status domain.RequestStatus) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = $2`,
		eventID, string(status),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return n, nil
}

func (s requestStore) ExistsActive(ctx context.Context, requesterID, eventID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM requests
			WHERE requester_id = $1 AND event_id = $2 AND status = ANY($3)
		)`,
		requesterID, eventID, pq.Array(activeStatuses),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active request: %w", err)
	}
	return exists, nil
}

func (s requestStore) Save(ctx context.Context, r domain.ParticipationRequest) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO requests (id, event_id, requester_id, status, created)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status`,
		r.ID, r.EventID, r.RequesterID, string(r.Status), r.Created,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRequest
		}
		return fmt.Errorf("save request: %w", err)
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
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var res []domain.ParticipationRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func scanRequest(row scanner) (domain.ParticipationRequest, error) {
	var r domain.ParticipationRequest
	var status string

	if err := row.Scan(&r.ID, &r.EventID, &r.RequesterID, &status, &r.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ParticipationRequest{}, err
		}
		return domain.ParticipationRequest{}, fmt.Errorf("scan request: %w", err)
	}

	r.Status = domain.RequestStatus(status)
	r.Created = r.Created.UTC()
	return r, nil
}
