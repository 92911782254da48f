package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// CommentRepository implements domain.CommentRepository using SQLite.
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
		`INSERT INTO comments (`+commentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Text, c.AuthorID, c.EventID, string(c.Status),
		formatTime(c.CreatedOn), formatTime(c.UpdatedOn),
	)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Get(ctx context.Context, id string) (domain.Comment, error) {
	return r.get(ctx, id,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
}

// GetByAuthor reports a comment owned by someone else as not found.
func (r *CommentRepository) GetByAuthor(ctx context.Context, id, authorID string) (domain.Comment, error) {
	return r.get(ctx, id,
		`SELECT `+commentColumns+` FROM comments WHERE id = ? AND author_id = ?`, id, authorID)
}

func (r *CommentRepository) Update(ctx context.Context, c domain.Comment, expected domain.CommentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET text = ?, status = ?, updated_on = ?
		 WHERE id = ? AND status = ?`,
		c.Text, string(c.Status), formatTime(c.UpdatedOn), c.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("updating comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrConcurrentModified
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound(domain.EntityComment, id)
	}
	return nil
}

func (r *CommentRepository) FindByEventAndStatus(ctx context.Context, eventID string, status domain.CommentStatus) ([]domain.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE event_id = ? AND status = ?
		 ORDER BY created_on, id`,
		eventID, string(status))
}

func (r *CommentRepository) FindApprovedByEvent(ctx context.Context, eventID string, page domain.Page) ([]domain.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE event_id = ? AND status = ?
		 ORDER BY created_on, id
		 LIMIT ? OFFSET ?`,
		eventID, string(domain.CommentApproved), page.Size, page.Offset())
}

// Search applies only the predicates that are present.
func (r *CommentRepository) Search(ctx context.Context, s domain.CommentSearch) ([]domain.Comment, error) {
	var (
		where []string
		args  []any
	)

	if v, ok := s.Status.Get(); ok {
		where = append(where, "status = ?")
		args = append(args, string(v))
	}
	if v, ok := s.EventID.Get(); ok {
		where = append(where, "event_id = ?")
		args = append(args, v)
	}
	if v, ok := s.AuthorID.Get(); ok {
		where = append(where, "author_id = ?")
		args = append(args, v)
	}
	if v, ok := s.Start.Get(); ok {
		where = append(where, "created_on >= ?")
		args = append(args, formatTime(v))
	}
	if v, ok := s.End.Get(); ok {
		where = append(where, "created_on <= ?")
		args = append(args, formatTime(v))
	}

	query := `SELECT ` + commentColumns + ` FROM comments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_on, id LIMIT ? OFFSET ?`
	args = append(args, s.Page.Size, s.Page.Offset())

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
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var out []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComment(row scanner) (domain.Comment, error) {
	var c domain.Comment
	var status, createdOn, updatedOn string

	err := row.Scan(&c.ID, &c.Text, &c.AuthorID, &c.EventID, &status, &createdOn, &updatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Comment{}, err
		}
		return domain.Comment{}, fmt.Errorf("scanning comment: %w", err)
	}

	c.Status = domain.CommentStatus(status)
	c.CreatedOn = parseTime(createdOn)
	c.UpdatedOn = parseTime(updatedOn)
	return c, nil
}
