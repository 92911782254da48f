package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCommentLength is the longest comment text accepted, in characters.
const MaxCommentLength = 2000

// CommentStatus represents the moderation state of a comment.
type CommentStatus string

const (
	CommentPending  CommentStatus = "PENDING"
	CommentApproved CommentStatus = "APPROVED"
	CommentRejected CommentStatus = "REJECTED"
)

// Valid reports whether s is a known comment status.
func (s CommentStatus) Valid() bool {
	switch s {
	case CommentPending, CommentApproved, CommentRejected:
		return true
	}
	return false
}

// CommentAction is a moderation decision.
type CommentAction string

const (
	ActionApprove CommentAction = "approve"
	ActionDecline CommentAction = "reject"
)

// CommentTransitions defines moderation moves. Administrators may revisit a
// decision, but nothing leads back to PENDING.
var CommentTransitions = []Transition[CommentStatus, CommentAction]{
	{Action: ActionApprove, Src: CommentPending, Dst: CommentApproved},
	{Action: ActionApprove, Src: CommentApproved, Dst: CommentApproved},
	{Action: ActionApprove, Src: CommentRejected, Dst: CommentApproved},
	{Action: ActionDecline, Src: CommentPending, Dst: CommentRejected},
	{Action: ActionDecline, Src: CommentApproved, Dst: CommentRejected},
	{Action: ActionDecline, Src: CommentRejected, Dst: CommentRejected},
}

// CommentModerationAction maps an admin's target status to a moderation action.
func CommentModerationAction(target CommentStatus) (CommentAction, bool) {
	switch target {
	case CommentApproved:
		return ActionApprove, true
	case CommentRejected:
		return ActionDecline, true
	}
	return "", false
}

// Comment is a user's remark on a published event.
type Comment struct {
	ID        string
	Text      string
	AuthorID  string
	EventID   string
	Status    CommentStatus
	CreatedOn time.Time
	UpdatedOn time.Time
}

// NewComment creates a comment awaiting moderation.
func NewComment(id, authorID, eventID, text string) Comment {
	now := time.Now().UTC()
	return Comment{
		ID:        id,
		Text:      text,
		AuthorID:  authorID,
		EventID:   eventID,
		Status:    CommentPending,
		CreatedOn: now,
		UpdatedOn: now,
	}
}

// ValidateCommentText checks that text is non-empty and within MaxCommentLength.
func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "text", Reason: "must not be blank"}
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return &ValidationError{Field: "text", Reason: "must be at most 2000 characters"}
	}
	return nil
}
