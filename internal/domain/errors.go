package domain

import (
	"errors"
	"fmt"
)

// Entity names used in NotFoundError.
const (
	EntityUser    = "user"
	EntityEvent   = "event"
	EntityRequest = "request"
	EntityComment = "comment"
)

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError for the given entity.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError is returned when a well-formed operation violates a business rule.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// Business rule violations. Compare with errors.Is.
var (
	ErrEventNotPublished  = &ConflictError{Reason: "event is not published"}
	ErrOwnEvent           = &ConflictError{Reason: "initiator cannot request participation in own event"}
	ErrDuplicateRequest   = &ConflictError{Reason: "participation request already exists"}
	ErrParticipantLimit   = &ConflictError{Reason: "participant limit reached"}
	ErrNotRequester       = &ConflictError{Reason: "only the requester can cancel a request"}
	ErrNotInitiator       = &ConflictError{Reason: "only the event initiator can manage its requests"}
	ErrRequestNotInEvent  = &ConflictError{Reason: "request does not belong to the event"}
	ErrRequestNotPending  = &ConflictError{Reason: "only pending requests can change status"}
	ErrCommentNotPending  = &ConflictError{Reason: "only pending comments can be edited"}
	ErrPendingModeration  = &ConflictError{Reason: "moderation target cannot be PENDING"}
	ErrConcurrentModified = &ConflictError{Reason: "entity was modified concurrently"}
)

// TransitionError is returned when a status change is not allowed from the current status.
type TransitionError struct {
	Entity  string
	Action  string
	Current string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s action %q is not valid from status %q", e.Entity, e.Action, e.Current)
}

// ValidationError is returned for malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnavailableError is returned when a directory could not confirm or deny
// that an entity exists. It must never be read as "not found".
type UnavailableError struct {
	Directory string
	ID        string
	Err       error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s directory unavailable while resolving %q: %v", e.Directory, e.ID, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

