package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// CommentRepository implements domain.CommentRepository using PostgreSQL.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository returns a repository over an opened database.
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db.db}
}

const commentColumns = `id, text, author_id, event_id, status, created_on, updated_on`

func (r *CommentRepository) Create(ctx context.Context, c domain.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (`+commentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Text, c.AuthorID, c.EventID, string(c.Status), c.CreatedOn, c.UpdatedOn,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Get(ctx context.Context, id string) (domain.Comment, error) {
	return r.get(ctx, id, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
}

func (r *CommentRepository) GetByAuthor(ctx context.Context, id, authorID string) (domain.Comment, error) {
	return r.get(ctx, id,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1 AND author_id = $2`, id, authorID)
}

func (r *CommentRepository) Update(ctx context.Context, c domain.Comment, expected domain.CommentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET text = $1, status = $2, updated_on = $3
		 WHERE id = $4 AND status = $5`,
		c.Text, string(c.Status), c.UpdatedOn, c.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("comment rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrConcurrentModified
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("comment rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound(domain.EntityComment, id)
	}
	return nil
}

func (r *CommentRepository) FindByEventAndStatus(ctx context.Context, eventID string, status domain.CommentStatus) ([]domain.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE event_id = $1 AND status = $2
		 ORDER BY created_on, id`,
		eventID, string(status))
}

func (r *CommentRepository) FindApprovedByEvent(ctx context.Context, eventID string, page domain.Page) ([]domain.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE event_id = $1 AND status = $2
		 ORDER BY created_on, id
		 LIMIT $3 OFFSET $4`,
		eventID, string(domain.CommentApproved), page.Size, page.Offset())
}

func (r *CommentRepository) Search(ctx context.Context, s domain.CommentSearch) ([]domain.Comment, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if v, ok := s.Status.Get(); ok {
		add("status = $%d", string(v))
	}
	if v, ok := s.EventID.Get(); ok {
		add("event_id = $%d", v)
	}
	if v, ok := s.AuthorID.Get(); ok {
		add("author_id = $%d", v)
	}
	if v, ok := s.Start.Get(); ok {
		add("created_on >= $%d", v)
	}
	if v, ok := s.End.Get(); ok {
		add("created_on <= $%d", v)
	}

	query := `SELECT ` + commentColumns + ` FROM comments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, s.Page.Size, s.Page.Offset())
	query += fmt.Sprintf(` ORDER BY created_on, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return r.list(ctx, query, args...)
}

func (r *CommentRepository) get(ctx context.Context, id, query string, args ...any) (domain.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Comment{}, domain.NotFound(domain.EntityComment, id)
	}
	return c, err
}

func (r *CommentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var res []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func scanComment(row scanner) (domain.Comment, error) {
	var c domain.Comment
	var status string

	err := row.Scan(&c.ID, &c.Text, &c.AuthorID, &c.EventID, &status, &c.CreatedOn, &c.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Comment{}, err
		}
		return domain.Comment{}, fmt.Errorf("scan comment: %w", err)
	}

	c.Status = domain.CommentStatus(status)
	c.CreatedOn = c.CreatedOn.UTC()
	c.UpdatedOn = c.UpdatedOn.UTC()
	return c, nil
}
