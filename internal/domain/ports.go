package domain

import "context"

// RequestStore is the persistence contract for participation requests.
type RequestStore interface {
	Get(ctx context.Context, id string) (ParticipationRequest, error)
	FindByRequester(ctx context.Context, requesterID string) ([]ParticipationRequest, error)
	FindByEvent(ctx context.Context, eventID string) ([]ParticipationRequest, error)
	CountByEventAndStatus(ctx context.Context, eventID string, status RequestStatus) (int, error)
	ExistsActive(ctx context.Context, requesterID, eventID string) (bool, error)
	Save(ctx context.Context, r ParticipationRequest) error
	SaveAll(ctx context.Context, rs []ParticipationRequest) error
}

// RequestRepository is a RequestStore that can run a unit of work for one event.
type RequestRepository interface {
	RequestStore

	// WithinEvent runs fn in a single transaction. Concurrent calls for the
	// same event are serialized. fn must only use the store it is given, and
	// any error it returns rolls the transaction back.
	WithinEvent(ctx context.Context, eventID string, fn func(ctx context.Context, store RequestStore) error) error
}

// CommentRepository is the persistence contract for comments.
type CommentRepository interface {
	Create(ctx context.Context, c Comment) error
	Get(ctx context.Context, id string) (Comment, error)
	GetByAuthor(ctx context.Context, id, authorID string) (Comment, error)
	// Update overwrites text, status and updated time only if the stored
	// status still equals expected; otherwise it returns ErrConcurrentModified.
	Update(ctx context.Context, c Comment, expected CommentStatus) error
	Delete(ctx context.Context, id string) error
	FindByEventAndStatus(ctx context.Context, eventID string, status CommentStatus) ([]Comment, error)
	FindApprovedByEvent(ctx context.Context, eventID string, page Page) ([]Comment, error)
	Search(ctx context.Context, search CommentSearch) ([]Comment, error)
}

// UserDirectory resolves users owned by another service. It returns a
// *NotFoundError when the user verifiably does not exist and an
// *UnavailableError when existence could not be checked.
type UserDirectory interface {
	User(ctx context.Context, id string) (User, error)
}

// EventDirectory resolves event snapshots, with the same error contract as UserDirectory.
type EventDirectory interface {
	Snapshot(ctx context.Context, id string) (EventSnapshot, error)
}

// RequestTransitionValidator applies request actions to statuses.
type RequestTransitionValidator interface {
	Apply(ctx context.Context, current RequestStatus, action RequestAction) (RequestStatus, error)
}

// CommentTransitionValidator applies moderation actions to comment statuses.
type CommentTransitionValidator interface {
	Apply(ctx context.Context, current CommentStatus, action CommentAction) (CommentStatus, error)
}

// ChangePublisher emits notifications about committed changes.
type ChangePublisher interface {
	Publish(ctx context.Context, change Change) error
}
