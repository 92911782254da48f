package domain

import "time"

// RequestStatus represents the lifecycle state of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestConfirmed, RequestRejected, RequestCanceled:
		return true
	}
	return false
}

// RequestAction is an action that moves a request between statuses.
type RequestAction string

const (
	ActionConfirm RequestAction = "confirm"
	ActionReject  RequestAction = "reject"
	ActionCancel  RequestAction = "cancel"
)

// RequestTransitions defines every valid status change of a participation request.
// Cancel is accepted from any status so that repeated cancels keep the request CANCELED.
var RequestTransitions = []Transition[RequestStatus, RequestAction]{
	{Action: ActionConfirm, Src: RequestPending, Dst: RequestConfirmed},
	{Action: ActionReject, Src: RequestPending, Dst: RequestRejected},
	{Action: ActionCancel, Src: RequestPending, Dst: RequestCanceled},
	{Action: ActionCancel, Src: RequestConfirmed, Dst: RequestCanceled},
	{Action: ActionCancel, Src: RequestRejected, Dst: RequestCanceled},
	{Action: ActionCancel, Src: RequestCanceled, Dst: RequestCanceled},
}

// ModerationAction maps the target of an initiator's bulk status change to
// the action that produces it. Only CONFIRMED and REJECTED are accepted.
func ModerationAction(target RequestStatus) (RequestAction, bool) {
	switch target {
	case RequestConfirmed:
		return ActionConfirm, true
	case RequestRejected:
		return ActionReject, true
	}
	return "", false
}

// ParticipationRequest is a user's request to take part in an event.
type ParticipationRequest struct {
	ID          string
	EventID     string
	RequesterID string
	Status      RequestStatus
	Created     time.Time
}

// NewParticipationRequest creates a request with the given initial status.
func NewParticipationRequest(id, eventID, requesterID string, status RequestStatus) ParticipationRequest {
	return ParticipationRequest{
		ID:          id,
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      status,
		Created:     time.Now().UTC(),
	}
}

// Active reports whether the request still counts toward the one-per-event rule.
func (r ParticipationRequest) Active() bool {
	return r.Status != RequestCanceled
}

// StatusUpdateResult is the outcome of a bulk status change.
type StatusUpdateResult struct {
	Confirmed []ParticipationRequest
	Rejected  []ParticipationRequest
}
