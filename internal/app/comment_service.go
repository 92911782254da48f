package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// CommentService runs comment authoring and moderation.
type CommentService struct {
	repo      domain.CommentRepository
	users     domain.UserDirectory
	events    domain.EventDirectory
	validator domain.CommentTransitionValidator
	publisher domain.ChangePublisher
	log       logrus.FieldLogger
}

// NewCommentService creates a service with the given adapters.
func NewCommentService(
	repo domain.CommentRepository,
	users domain.UserDirectory,
	events domain.EventDirectory,
	validator domain.CommentTransitionValidator,
	publisher domain.ChangePublisher,
	log logrus.FieldLogger,
) *CommentService {
	return &CommentService{
		repo:      repo,
		users:     users,
		events:    events,
		validator: validator,
		publisher: publisher,
		log:       log,
	}
}

// Create posts a comment on a published event. It starts PENDING.
func (s *CommentService) Create(ctx context.Context, userID, eventID, text string) (domain.Comment, error) {
	if err := domain.ValidateCommentText(text); err != nil {
		return domain.Comment{}, err
	}
	if _, err := s.users.User(ctx, userID); err != nil {
		return domain.Comment{}, fmt.Errorf("resolving user: %w", err)
	}

	event, err := s.events.Snapshot(ctx, eventID)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("resolving event: %w", err)
	}
	if !event.Published() {
		return domain.Comment{}, domain.ErrEventNotPublished
	}

	comment := domain.NewComment(generateID(), userID, eventID, text)
	if err := s.repo.Create(ctx, comment); err != nil {
		return domain.Comment{}, fmt.Errorf("creating comment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"event_id":   eventID,
		"user_id":    userID,
	}).Info("comment created")

	s.publish(ctx, domain.CommentChange(domain.ChangeCommentCreated, comment, userID))

	return comment, nil
}

// UpdateByAuthor replaces the text of the author's own pending comment.
func (s *CommentService) UpdateByAuthor(ctx context.Context, userID, commentID, text string) (domain.Comment, error) {
	if err := domain.ValidateCommentText(text); err != nil {
		return domain.Comment{}, err
	}

	comment, err := s.repo.GetByAuthor(ctx, commentID, userID)
	if err != nil {
		return domain.Comment{}, err
	}
	if comment.Status != domain.CommentPending {
		return domain.Comment{}, domain.ErrCommentNotPending
	}

	comment.Text = text
	comment.UpdatedOn = time.Now().UTC()

	if err := s.repo.Update(ctx, comment, domain.CommentPending); err != nil {
		return domain.Comment{}, fmt.Errorf("updating comment: %w", err)
	}

	s.publish(ctx, domain.CommentChange(domain.ChangeCommentUpdated, comment, userID))

	return comment, nil
}

// DeleteByAuthor removes the author's own comment regardless of its status.
func (s *CommentService) DeleteByAuthor(ctx context.Context, userID, commentID string) error {
	comment, err := s.repo.GetByAuthor(ctx, commentID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.publish(ctx, domain.CommentChange(domain.ChangeCommentDeleted, comment, userID))
	return nil
}

// ListPublishedForEvent returns a page of approved comments of an event.
func (s *CommentService) ListPublishedForEvent(ctx context.Context, eventID string, page domain.Page) ([]domain.Comment, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.events.Snapshot(ctx, eventID); err != nil {
		return nil, fmt.Errorf("resolving event: %w", err)
	}
	return s.repo.FindApprovedByEvent(ctx, eventID, page)
}

// AdminSearch filters comments by any combination of the optional predicates.
// A range whose end precedes its start matches nothing.
func (s *CommentService) AdminSearch(ctx context.Context, search domain.CommentSearch) ([]domain.Comment, error) {
	if err := search.Page.Validate(); err != nil {
		return nil, err
	}
	if start, ok := search.Start.Get(); ok {
		if end, ok := search.End.Get(); ok && end.Before(start) {
			return []domain.Comment{}, nil
		}
	}
	return s.repo.Search(ctx, search)
}

// ListByStatus returns the comments of an event that are exactly in status.
func (s *CommentService) ListByStatus(ctx context.Context, eventID string, status domain.CommentStatus) ([]domain.Comment, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	if _, err := s.events.Snapshot(ctx, eventID); err != nil {
		return nil, fmt.Errorf("resolving event: %w", err)
	}
	return s.repo.FindByEventAndStatus(ctx, eventID, status)
}

// PatchByAdmin moderates a comment and optionally rewrites its text.
// A nil text leaves the text unchanged.
func (s *CommentService) PatchByAdmin(ctx context.Context, commentID string, target domain.CommentStatus, text *string) (domain.Comment, error) {
	if !target.Valid() {
		return domain.Comment{}, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", target)}
	}
	if text != nil {
		if err := domain.ValidateCommentText(*text); err != nil {
			return domain.Comment{}, err
		}
	}

	comment, err := s.repo.Get(ctx, commentID)
	if err != nil {
		return domain.Comment{}, err
	}

	action, ok := domain.CommentModerationAction(target)
	if !ok {
		return domain.Comment{}, domain.ErrPendingModeration
	}

	previous := comment.Status
	comment.Status, err = s.validator.Apply(ctx, previous, action)
	if err != nil {
		return domain.Comment{}, err
	}
	if text != nil {
		comment.Text = *text
	}
	comment.UpdatedOn = time.Now().UTC()

	if err := s.repo.Update(ctx, comment, previous); err != nil {
		return domain.Comment{}, fmt.Errorf("updating comment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"comment_id": commentID,
		"from":       previous,
		"to":         comment.Status,
	}).Info("comment moderated")

	s.publish(ctx, domain.CommentChange(domain.ChangeCommentModerated, comment, ""))

	return comment, nil
}

// DeleteByAdmin removes any comment.
func (s *CommentService) DeleteByAdmin(ctx context.Context, commentID string) error {
	comment, err := s.repo.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.publish(ctx, domain.CommentChange(domain.ChangeCommentDeleted, comment, ""))
	return nil
}

func (s *CommentService) publish(ctx context.Context, change domain.Change) {
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"kind":      change.Kind,
			"entity_id": change.EntityID,
		}).Warn("publishing change failed")
	}
}
