package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gatherly/internal/app"
	"github.com/neomorfeo/gatherly/internal/domain"
)

type CountInput struct {
	EventID string `path:"eventId" doc:"Event ID"`
	Status  string `path:"status" doc:"Request status"`
}

type CountOutput struct {
	Body int
}

// registerInternal adds the service-to-service endpoints other services
// call to learn how many participants an event has.
func registerInternal(api huma.API, svc *app.RequestService, errs errorMapper) {
	huma.Register(api, huma.Operation{
		OperationID: "count-requests",
		Method:      http.MethodGet,
		Path:        "/internal/requests/event/{eventId}/count/{status}",
		Summary:     "Count an event's requests in one status",
		Tags:        []string{"Internal"},
	}, func(ctx context.Context, input *CountInput) (*CountOutput, error) {
		n, err := svc.CountByStatus(ctx, input.EventID, domain.RequestStatus(input.Status))
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &CountOutput{Body: n}, nil
	})
}
