package domain

// EventState is the publication state of an event as reported by the event directory.
type EventState string

const (
	EventPending   EventState = "PENDING"
	EventPublished EventState = "PUBLISHED"
	EventCanceled  EventState = "CANCELED"
)

// EventSnapshot is a read-only projection of an event taken once per call.
type EventSnapshot struct {
	ID                string
	State             EventState
	ParticipantLimit  int
	RequestModeration bool
	InitiatorID       string
}

// Published reports whether the event accepts new requests and comments.
func (e EventSnapshot) Published() bool {
	return e.State == EventPublished
}

// Limited reports whether the event caps confirmed participants.
func (e EventSnapshot) Limited() bool {
	return e.ParticipantLimit > 0
}

// Full reports whether confirmed participants already reach the limit.
func (e EventSnapshot) Full(confirmed int) bool {
	return e.Limited() && confirmed >= e.ParticipantLimit
}

// InitialStatus decides where a new request starts: unlimited or unmoderated
// events confirm immediately, everything else waits for the initiator.
func (e EventSnapshot) InitialStatus() RequestStatus {
	if !e.Limited() || !e.RequestModeration {
		return RequestConfirmed
	}
	return RequestPending
}

// User is the profile returned by the user directory.
type User struct {
	ID   string
	Name string
}
