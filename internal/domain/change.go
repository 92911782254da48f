package domain

// ChangeKind names a committed change worth notifying about.
type ChangeKind string

const (
	ChangeRequestCreated   ChangeKind = "request.created"
	ChangeRequestCanceled  ChangeKind = "request.canceled"
	ChangeRequestConfirmed ChangeKind = "request.confirmed"
	ChangeRequestRejected  ChangeKind = "request.rejected"
	ChangeCommentCreated   ChangeKind = "comment.created"
	ChangeCommentUpdated   ChangeKind = "comment.updated"
	ChangeCommentModerated ChangeKind = "comment.moderated"
	ChangeCommentDeleted   ChangeKind = "comment.deleted"
)

// Change is a snapshot of what happened, carried to asynchronous consumers.
type Change struct {
	Kind     ChangeKind
	EntityID string
	EventID  string
	ActorID  string
	Status   string
}

// RequestChange describes a change to a participation request.
func RequestChange(kind ChangeKind, r ParticipationRequest, actorID string) Change {
	return Change{
		Kind:     kind,
		EntityID: r.ID,
		EventID:  r.EventID,
		ActorID:  actorID,
		Status:   string(r.Status),
	}
}

// CommentChange describes a change to a comment.
func CommentChange(kind ChangeKind, c Comment, actorID string) Change {
	return Change{
		Kind:     kind,
		EntityID: c.ID,
		EventID:  c.EventID,
		ActorID:  actorID,
		Status:   string(c.Status),
	}
}
