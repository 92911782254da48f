package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// Compile-time checks.
var (
	_ domain.RequestTransitionValidator = (*Validator[domain.RequestStatus, domain.RequestAction])(nil)
	_ domain.CommentTransitionValidator = (*Validator[domain.CommentStatus, domain.CommentAction])(nil)
)

// buildEvents converts a domain transition table into looplab/fsm EventDesc format.
// Transitions sharing an action and destination collapse into one EventDesc
// with several source states (e.g. cancel from PENDING and CONFIRMED).
func buildEvents[S ~string, A ~string](table []domain.Transition[S, A]) []loopfsm.EventDesc {
	type key struct {
		action string
		dst    string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range table {
		k := key{action: string(t.Action), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.action,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Validator checks status changes against a transition table using looplab/fsm.
// looplab/fsm is stateful, so a short-lived machine is built per Apply call,
// starting from the entity's current status.
type Validator[S ~string, A ~string] struct {
	entity string
	events []loopfsm.EventDesc
}

// NewRequestValidator returns a validator for participation request statuses.
func NewRequestValidator() *Validator[domain.RequestStatus, domain.RequestAction] {
	return &Validator[domain.RequestStatus, domain.RequestAction]{
		entity: domain.EntityRequest,
		events: buildEvents(domain.RequestTransitions),
	}
}

// NewCommentValidator returns a validator for comment moderation statuses.
func NewCommentValidator() *Validator[domain.CommentStatus, domain.CommentAction] {
	return &Validator[domain.CommentStatus, domain.CommentAction]{
		entity: domain.EntityComment,
		events: buildEvents(domain.CommentTransitions),
	}
}

// Apply returns the status reached by performing action from current, or a
// *domain.TransitionError if the table does not allow it. Self-transitions
// declared in the table (such as cancelling a canceled request) succeed.
func (v *Validator[S, A]) Apply(ctx context.Context, current S, action A) (S, error) {
	machine := loopfsm.NewFSM(string(current), v.events, nil)

	if err := machine.Event(ctx, string(action)); err != nil {
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return current, nil
		}

		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) {
			return "", &domain.TransitionError{
				Entity:  v.entity,
				Action:  string(action),
				Current: string(current),
			}
		}
		return "", err
	}

	return S(machine.Current()), nil
}
