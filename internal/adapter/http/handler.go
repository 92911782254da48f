package http

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/neomorfeo/gatherly/internal/app"
	"github.com/neomorfeo/gatherly/internal/domain"
)

// TimeLayout is the timestamp format used in bodies and query parameters.
const TimeLayout = "2006-01-02 15:04:05"

const apiPrefix = "/api/v1"

// Register adds all API routes to the Huma API. Errors that map to a 500
// are logged with their cause through log.
func Register(api huma.API, requests *app.RequestService, comments *app.CommentService, log logrus.FieldLogger) {
	errs := errorMapper{log: log}
	registerRequests(api, requests, errs)
	registerComments(api, comments, errs)
	registerAdmin(api, comments, errs)
	registerInternal(api, requests, errs)
}

type errorMapper struct {
	log logrus.FieldLogger
}

// toHuma translates domain errors to Huma HTTP errors.
func (m errorMapper) toHuma(ctx context.Context, err error) error {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return huma.Error404NotFound(notFound.Error())
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return huma.Error409Conflict(conflict.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error409Conflict(trErr.Error())
	}

	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		return huma.Error400BadRequest(invalid.Error())
	}

	var unavailable *domain.UnavailableError
	if errors.As(err, &unavailable) {
		return huma.Error503ServiceUnavailable(unavailable.Directory + " directory unavailable")
	}

	m.log.WithError(err).WithField("request_id", middleware.GetReqID(ctx)).Error("unhandled error")
	return huma.Error500InternalServerError("internal server error")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// parseTime reads an optional timestamp query parameter.
func parseTime(field, value string) (domain.Optional[time.Time], error) {
	if value == "" {
		return domain.Optional[time.Time]{}, nil
	}
	t, err := time.ParseInLocation(TimeLayout, value, time.UTC)
	if err != nil {
		return domain.Optional[time.Time]{}, &domain.ValidationError{
			Field:  field,
			Reason: "must match " + TimeLayout,
		}
	}
	return domain.Some(t), nil
}

func optional(value string) domain.Optional[string] {
	if value == "" {
		return domain.Optional[string]{}
	}
	return domain.Some(value)
}
