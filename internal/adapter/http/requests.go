package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gatherly/internal/app"
	"github.com/neomorfeo/gatherly/internal/domain"
)

// RequestResponse is the API representation of a participation request.
type RequestResponse struct {
	ID          string `json:"id" doc:"Unique identifier"`
	EventID     string `json:"eventId" doc:"Requested event"`
	RequesterID string `json:"requesterId" doc:"Requesting user"`
	Status      string `json:"status" doc:"PENDING, CONFIRMED, REJECTED or CANCELED"`
	Created     string `json:"created" doc:"Creation timestamp (yyyy-MM-dd HH:mm:ss, UTC)"`
}

func toRequestResponse(r domain.ParticipationRequest) RequestResponse {
	return RequestResponse{
		ID:          r.ID,
		EventID:     r.EventID,
		RequesterID: r.RequesterID,
		Status:      string(r.Status),
		Created:     formatTime(r.Created),
	}
}

func toRequestResponses(rs []domain.ParticipationRequest) []RequestResponse {
	out := make([]RequestResponse, len(rs))
	for i, r := range rs {
		out[i] = toRequestResponse(r)
	}
	return out
}

type UserInput struct {
	UserID string `path:"userId" doc:"Acting user ID"`
}

type RequestListOutput struct {
	Body []RequestResponse
}

type CreateRequestInput struct {
	UserID  string `path:"userId" doc:"Requesting user ID"`
	EventID string `query:"eventId" doc:"Event to join"`
}

type RequestOutput struct {
	Body RequestResponse
}

type CancelRequestInput struct {
	UserID    string `path:"userId" doc:"Requesting user ID"`
	RequestID string `path:"requestId" doc:"Request ID"`
}

type EventRequestsInput struct {
	UserID  string `path:"userId" doc:"Event initiator ID"`
	EventID string `path:"eventId" doc:"Event ID"`
}

type ChangeStatusInput struct {
	UserID  string `path:"userId" doc:"Event initiator ID"`
	EventID string `path:"eventId" doc:"Event ID"`
	Body    struct {
		RequestIDs []string `json:"requestIds,omitempty" doc:"Requests to moderate, applied in order"`
		Status     string   `json:"status,omitempty" doc:"CONFIRMED or REJECTED"`
	}
}

type ChangeStatusOutput struct {
	Body struct {
		ConfirmedRequests []RequestResponse `json:"confirmedRequests"`
		RejectedRequests  []RequestResponse `json:"rejectedRequests"`
	}
}

func registerRequests(api huma.API, svc *app.RequestService, errs errorMapper) {
	tags := []string{"Requests"}

	huma.Register(api, huma.Operation{
		OperationID: "list-user-requests",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/users/{userId}/requests",
		Summary:     "List a user's participation requests",
		Tags:        tags,
	}, func(ctx context.Context, input *UserInput) (*RequestListOutput, error) {
		rs, err := svc.ListForUser(ctx, input.UserID)
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &RequestListOutput{Body: toRequestResponses(rs)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-request",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/users/{userId}/requests",
		Summary:       "Request to participate in an event",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateRequestInput) (*RequestOutput, error) {
		if input.EventID == "" {
			return nil, errs.toHuma(ctx, &domain.ValidationError{Field: "eventId", Reason: "is required"})
		}
		r, err := svc.Create(ctx, input.UserID, input.EventID)
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &RequestOutput{Body: toRequestResponse(r)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-request",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/users/{userId}/requests/{requestId}/cancel",
		Summary:     "Cancel own participation request",
		Tags:        tags,
	}, func(ctx context.Context, input *CancelRequestInput) (*RequestOutput, error) {
		r, err := svc.Cancel(ctx, input.UserID, input.RequestID)
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &RequestOutput{Body: toRequestResponse(r)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-event-requests",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/users/{userId}/events/{eventId}/requests",
		Summary:     "List requests for an event the user initiated",
		Tags:        tags,
	}, func(ctx context.Context, input *EventRequestsInput) (*RequestListOutput, error) {
		rs, err := svc.ListForEvent(ctx, input.UserID, input.EventID)
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &RequestListOutput{Body: toRequestResponses(rs)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-request-status",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/users/{userId}/events/{eventId}/requests",
		Summary:     "Confirm or reject pending requests",
		Description: "Confirming past the participant limit rejects the remaining requests instead.",
		Tags:        tags,
	}, func(ctx context.Context, input *ChangeStatusInput) (*ChangeStatusOutput, error) {
		res, err := svc.ChangeStatus(ctx, input.UserID, input.EventID,
			input.Body.RequestIDs, domain.RequestStatus(input.Body.Status))
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}

		out := &ChangeStatusOutput{}
		out.Body.ConfirmedRequests = toRequestResponses(res.Confirmed)
		out.Body.RejectedRequests = toRequestResponses(res.Rejected)
		return out, nil
	})
}
