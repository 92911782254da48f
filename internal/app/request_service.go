package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// RequestService runs the participation request workflow: admission,
// cancellation and the initiator's bulk moderation.
type RequestService struct {
	repo      domain.RequestRepository
	users     domain.UserDirectory
	events    domain.EventDirectory
	validator domain.RequestTransitionValidator
	publisher domain.ChangePublisher
	log       logrus.FieldLogger
}

// NewRequestService creates a service with the given adapters.
func NewRequestService(
	repo domain.RequestRepository,
	users domain.UserDirectory,
	events domain.EventDirectory,
	validator domain.RequestTransitionValidator,
	publisher domain.ChangePublisher,
	log logrus.FieldLogger,
) *RequestService {
	return &RequestService{
		repo:      repo,
		users:     users,
		events:    events,
		validator: validator,
		publisher: publisher,
		log:       log,
	}
}

// ListForUser returns every request made by the user, whatever its status.
func (s *RequestService) ListForUser(ctx context.Context, userID string) ([]domain.ParticipationRequest, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.FindByRequester(ctx, userID)
}

// Create submits a participation request. Directory lookups happen first;
// the duplicate check, capacity check and insert share one event transaction.
func (s *RequestService) Create(ctx context.Context, userID, eventID string) (domain.ParticipationRequest, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return domain.ParticipationRequest{}, err
	}

	event, err := s.events.Snapshot(ctx, eventID)
	if err != nil {
		return domain.ParticipationRequest{}, fmt.Errorf("resolving event: %w", err)
	}
	if !event.Published() {
		return domain.ParticipationRequest{}, domain.ErrEventNotPublished
	}
	if event.InitiatorID == userID {
		return domain.ParticipationRequest{}, domain.ErrOwnEvent
	}

	request := domain.NewParticipationRequest(generateID(), eventID, userID, event.InitialStatus())

	err = s.repo.WithinEvent(ctx, eventID, func(ctx context.Context, store domain.RequestStore) error {
		exists, err := store.ExistsActive(ctx, userID, eventID)
		if err != nil {
			return fmt.Errorf("checking existing request: %w", err)
		}
		if exists {
			return domain.ErrDuplicateRequest
		}

		if event.Limited() {
			confirmed, err := store.CountByEventAndStatus(ctx, eventID, domain.RequestConfirmed)
			if err != nil {
				return fmt.Errorf("counting confirmed requests: %w", err)
			}
			if event.Full(confirmed) {
				return domain.ErrParticipantLimit
			}
		}

		if err := store.Save(ctx, request); err != nil {
			return fmt.Errorf("saving request: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.ParticipationRequest{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": request.ID,
		"event_id":   eventID,
		"user_id":    userID,
		"status":     request.Status,
	}).Info("participation request created")

	s.publish(ctx, domain.RequestChange(domain.ChangeRequestCreated, request, userID))

	return request, nil
}

// Cancel withdraws the user's own request. Cancel does not look at the
// current status: any request of the requester ends up CANCELED.
func (s *RequestService) Cancel(ctx context.Context, userID, requestID string) (domain.ParticipationRequest, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return domain.ParticipationRequest{}, err
	}

	current, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return domain.ParticipationRequest{}, err
	}

	var canceled domain.ParticipationRequest
	err = s.repo.WithinEvent(ctx, current.EventID, func(ctx context.Context, store domain.RequestStore) error {
		request, err := store.Get(ctx, requestID)
		if err != nil {
			return err
		}
		if request.RequesterID != userID {
			return domain.ErrNotRequester
		}

		request.Status, err = s.validator.Apply(ctx, request.Status, domain.ActionCancel)
		if err != nil {
			return err
		}

		if err := store.Save(ctx, request); err != nil {
			return fmt.Errorf("saving request: %w", err)
		}
		canceled = request
		return nil
	})
	if err != nil {
		return domain.ParticipationRequest{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("participation request canceled")

	s.publish(ctx, domain.RequestChange(domain.ChangeRequestCanceled, canceled, userID))

	return canceled, nil
}

// ListForEvent returns all requests for an event. Only the initiator may look.
func (s *RequestService) ListForEvent(ctx context.Context, userID, eventID string) ([]domain.ParticipationRequest, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	event, err := s.events.Snapshot(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("resolving event: %w", err)
	}
	if event.InitiatorID != userID {
		return nil, domain.ErrNotInitiator
	}

	return s.repo.FindByEvent(ctx, eventID)
}

// ChangeStatus confirms or rejects pending requests of an event in the order
// given. When confirming, capacity is counted as the batch proceeds and the
// requests that no longer fit are rejected instead. Any rule violation
// aborts the whole batch.
func (s *RequestService) ChangeStatus(
	ctx context.Context,
	userID, eventID string,
	requestIDs []string,
	target domain.RequestStatus,
) (domain.StatusUpdateResult, error) {
	action, ok := domain.ModerationAction(target)
	if !ok {
		return domain.StatusUpdateResult{}, &domain.ValidationError{
			Field:  "status",
			Reason: "must be CONFIRMED or REJECTED",
		}
	}

	if err := s.checkUser(ctx, userID); err != nil {
		return domain.StatusUpdateResult{}, err
	}

	event, err := s.events.Snapshot(ctx, eventID)
	if err != nil {
		return domain.StatusUpdateResult{}, fmt.Errorf("resolving event: %w", err)
	}
	if event.InitiatorID != userID {
		return domain.StatusUpdateResult{}, domain.ErrNotInitiator
	}

	var result domain.StatusUpdateResult
	err = s.repo.WithinEvent(ctx, eventID, func(ctx context.Context, store domain.RequestStore) error {
		result = domain.StatusUpdateResult{}

		confirmed := 0
		if event.Limited() {
			n, err := store.CountByEventAndStatus(ctx, eventID, domain.RequestConfirmed)
			if err != nil {
				return fmt.Errorf("counting confirmed requests: %w", err)
			}
			if event.Full(n) {
				return domain.ErrParticipantLimit
			}
			confirmed = n
		}

		requests, err := s.loadPending(ctx, store, eventID, requestIDs)
		if err != nil {
			return err
		}

		for i := range requests {
			step := action
			if action == domain.ActionConfirm && event.Full(confirmed) {
				step = domain.ActionReject
			}

			requests[i].Status, err = s.validator.Apply(ctx, requests[i].Status, step)
			if err != nil {
				return err
			}

			if requests[i].Status == domain.RequestConfirmed {
				confirmed++
				result.Confirmed = append(result.Confirmed, requests[i])
			} else {
				result.Rejected = append(result.Rejected, requests[i])
			}
		}

		if err := store.SaveAll(ctx, requests); err != nil {
			return fmt.Errorf("saving requests: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.StatusUpdateResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"event_id":  eventID,
		"user_id":   userID,
		"target":    target,
		"confirmed": len(result.Confirmed),
		"rejected":  len(result.Rejected),
	}).Info("participation requests moderated")

	for _, r := range result.Confirmed {
		s.publish(ctx, domain.RequestChange(domain.ChangeRequestConfirmed, r, userID))
	}
	for _, r := range result.Rejected {
		s.publish(ctx, domain.RequestChange(domain.ChangeRequestRejected, r, userID))
	}

	return result, nil
}

// CountByStatus reports how many requests of an event are in the given status.
func (s *RequestService) CountByStatus(ctx context.Context, eventID string, status domain.RequestStatus) (int, error) {
	if !status.Valid() {
		return 0, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	return s.repo.CountByEventAndStatus(ctx, eventID, status)
}

// loadPending fetches the requests in caller order, dropping repeated ids,
// and checks each belongs to the event and is still pending.
func (s *RequestService) loadPending(
	ctx context.Context,
	store domain.RequestStore,
	eventID string,
	ids []string,
) ([]domain.ParticipationRequest, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]domain.ParticipationRequest, 0, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		r, err := store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if r.EventID != eventID {
			return nil, domain.ErrRequestNotInEvent
		}
		if r.Status != domain.RequestPending {
			return nil, domain.ErrRequestNotPending
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *RequestService) checkUser(ctx context.Context, userID string) error {
	if _, err := s.users.User(ctx, userID); err != nil {
		return fmt.Errorf("resolving user: %w", err)
	}
	return nil
}

// publish hands a committed change to the publisher. The change is already
// durable, so a failure here is logged rather than returned.
func (s *RequestService) publish(ctx context.Context, change domain.Change) {
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"kind":      change.Kind,
			"entity_id": change.EntityID,
		}).Warn("publishing change failed")
	}
}
