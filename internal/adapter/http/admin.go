package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gatherly/internal/app"
	"github.com/neomorfeo/gatherly/internal/domain"
)

type AdminSearchInput struct {
	Status     string `query:"status" doc:"Only comments in this status"`
	EventID    string `query:"eventId" doc:"Only comments on this event"`
	AuthorID   string `query:"authorId" doc:"Only comments by this user"`
	RangeStart string `query:"rangeStart" doc:"Created at or after (yyyy-MM-dd HH:mm:ss)"`
	RangeEnd   string `query:"rangeEnd" doc:"Created at or before (yyyy-MM-dd HH:mm:ss)"`
	From       int    `query:"from" default:"0" doc:"Offset of the first comment"`
	Size       int    `query:"size" default:"10" doc:"Page size"`
}

func (in *AdminSearchInput) search() (domain.CommentSearch, error) {
	start, err := parseTime("rangeStart", in.RangeStart)
	if err != nil {
		return domain.CommentSearch{}, err
	}
	end, err := parseTime("rangeEnd", in.RangeEnd)
	if err != nil {
		return domain.CommentSearch{}, err
	}

	s := domain.CommentSearch{
		EventID:  optional(in.EventID),
		AuthorID: optional(in.AuthorID),
		Start:    start,
		End:      end,
		Page:     domain.Page{From: in.From, Size: in.Size},
	}
	if in.Status != "" {
		status := domain.CommentStatus(in.Status)
		if !status.Valid() {
			return domain.CommentSearch{}, &domain.ValidationError{Field: "status", Reason: "unknown status " + in.Status}
		}
		s.Status = domain.Some(status)
	}
	return s, nil
}

type EventCommentsByStatusInput struct {
	EventID string `path:"eventId" doc:"Event ID"`
	Status  string `query:"status" doc:"PENDING, APPROVED or REJECTED"`
}

type PatchCommentInput struct {
	CommentID string `path:"commentId" doc:"Comment ID"`
	Body      struct {
		Status string  `json:"status,omitempty" doc:"APPROVED or REJECTED"`
		Text   *string `json:"text,omitempty" doc:"Replacement text"`
	}
}

type CommentIDInput struct {
	CommentID string `path:"commentId" doc:"Comment ID"`
}

func registerAdmin(api huma.API, svc *app.CommentService, errs errorMapper) {
	tags := []string{"Admin"}

	huma.Register(api, huma.Operation{
		OperationID: "search-comments",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/admin/comments",
		Summary:     "Search comments",
		Description: "Every filter is optional. An open range bound is unbounded on that side.",
		Tags:        tags,
	}, func(ctx context.Context, input *AdminSearchInput) (*CommentListOutput, error) {
		search, err := input.search()
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		cs, err := svc.AdminSearch(ctx, search)
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &CommentListOutput{Body: toCommentResponses(cs)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-event-comments-by-status",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/admin/events/{eventId}/comments",
		Summary:     "List an event's comments in one status",
		Tags:        tags,
	}, func(ctx context.Context, input *EventCommentsByStatusInput) (*CommentListOutput, error) {
		cs, err := svc.ListByStatus(ctx, input.EventID, domain.CommentStatus(input.Status))
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &CommentListOutput{Body: toCommentResponses(cs)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "moderate-comment",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/admin/comments/{commentId}",
		Summary:     "Approve or reject a comment",
		Tags:        tags,
	}, func(ctx context.Context, input *PatchCommentInput) (*CommentOutput, error) {
		c, err := svc.PatchByAdmin(ctx, input.CommentID, domain.CommentStatus(input.Body.Status), input.Body.Text)
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &CommentOutput{Body: toCommentResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-comment",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/admin/comments/{commentId}",
		Summary:       "Delete any comment",
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *CommentIDInput) (*struct{}, error) {
		if err := svc.DeleteByAdmin(ctx, input.CommentID); err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return nil, nil
	})
}
