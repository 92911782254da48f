package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gatherly/internal/app"
	"github.com/neomorfeo/gatherly/internal/domain"
)

// CommentResponse is the API representation of a comment.
type CommentResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Text      string `json:"text" doc:"Comment text"`
	AuthorID  string `json:"authorId" doc:"Author user ID"`
	EventID   string `json:"eventId" doc:"Commented event"`
	Status    string `json:"status" doc:"PENDING, APPROVED or REJECTED"`
	CreatedOn string `json:"createdOn" doc:"Creation timestamp (yyyy-MM-dd HH:mm:ss, UTC)"`
	UpdatedOn string `json:"updatedOn" doc:"Last update timestamp (yyyy-MM-dd HH:mm:ss, UTC)"`
}

func toCommentResponse(c domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Text:      c.Text,
		AuthorID:  c.AuthorID,
		EventID:   c.EventID,
		Status:    string(c.Status),
		CreatedOn: formatTime(c.CreatedOn),
		UpdatedOn: formatTime(c.UpdatedOn),
	}
}

func toCommentResponses(cs []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, len(cs))
	for i, c := range cs {
		out[i] = toCommentResponse(c)
	}
	return out
}

type CommentBody struct {
	Text string `json:"text,omitempty" doc:"Comment text, 1 to 2000 characters"`
}

type CreateCommentInput struct {
	UserID  string `path:"userId" doc:"Author ID"`
	EventID string `path:"eventId" doc:"Event ID"`
	Body    CommentBody
}

type UpdateCommentInput struct {
	UserID    string `path:"userId" doc:"Author ID"`
	CommentID string `path:"commentId" doc:"Comment ID"`
	Body      CommentBody
}

type AuthorCommentInput struct {
	UserID    string `path:"userId" doc:"Author ID"`
	CommentID string `path:"commentId" doc:"Comment ID"`
}

type CommentOutput struct {
	Body CommentResponse
}

type CommentListOutput struct {
	Body []CommentResponse
}

type PublishedCommentsInput struct {
	EventID string `path:"eventId" doc:"Event ID"`
	From    int    `query:"from" default:"0" doc:"Offset of the first comment"`
	Size    int    `query:"size" default:"10" doc:"Page size"`
}

func registerComments(api huma.API, svc *app.CommentService, errs errorMapper) {
	tags := []string{"Comments"}

	huma.Register(api, huma.Operation{
		OperationID:   "create-comment",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/users/{userId}/events/{eventId}/comments",
		Summary:       "Comment on a published event",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
		c, err := svc.Create(ctx, input.UserID, input.EventID, input.Body.Text)
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &CommentOutput{Body: toCommentResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-own-comment",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/users/{userId}/comments/{commentId}",
		Summary:     "Edit own comment while it awaits moderation",
		Tags:        tags,
	}, func(ctx context.Context, input *UpdateCommentInput) (*CommentOutput, error) {
		c, err := svc.UpdateByAuthor(ctx, input.UserID, input.CommentID, input.Body.Text)
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &CommentOutput{Body: toCommentResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-own-comment",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/users/{userId}/comments/{commentId}",
		Summary:       "Delete own comment",
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *AuthorCommentInput) (*struct{}, error) {
		if err := svc.DeleteByAuthor(ctx, input.UserID, input.CommentID); err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-event-comments",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/events/{eventId}/comments",
		Summary:     "List approved comments of an event",
		Tags:        tags,
	}, func(ctx context.Context, input *PublishedCommentsInput) (*CommentListOutput, error) {
		cs, err := svc.ListPublishedForEvent(ctx, input.EventID, domain.Page{From: input.From, Size: input.Size})
		if err != nil {
			return nil, errs.toHuma(ctx, err)
		}
		return &CommentListOutput{Body: toCommentResponses(cs)}, nil
	})
}
