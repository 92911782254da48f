package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/gatherly/internal/adapter/fsm"
	"github.com/neomorfeo/gatherly/internal/app"
	"github.com/neomorfeo/gatherly/internal/domain"
)

type commentFixture struct {
	svc  *app.CommentService
	repo *memComments
	dir  *directory
	pub  *recordingPublisher
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	f := &commentFixture{
		repo: newMemComments(),
		dir:  newDirectory(),
		pub:  &recordingPublisher{},
	}
	f.dir.addUsers("u1", "u2")
	f.dir.events["e1"] = domain.EventSnapshot{ID: "e1", State: domain.EventPublished, InitiatorID: "org"}
	f.dir.events["draft"] = domain.EventSnapshot{ID: "draft", State: domain.EventPending, InitiatorID: "org"}
	f.svc = app.NewCommentService(f.repo, f.dir, f.dir, fsm.NewCommentValidator(), f.pub, quietLogger())
	return f
}

func (f *commentFixture) seed(id, authorID string, status domain.CommentStatus) domain.Comment {
	c := domain.NewComment(id, authorID, "e1", "text of "+id)
	c.Status = status
	f.repo.comments[id] = c
	return c
}

func TestCreateComment(t *testing.T) {
	f := newCommentFixture(t)

	c, err := f.svc.Create(context.Background(), "u1", "e1", "great event")
	require.NoError(t, err)

	assert.Equal(t, domain.CommentPending, c.Status)
	assert.Equal(t, "u1", c.AuthorID)
	assert.Contains(t, f.repo.comments, c.ID)
	assert.Equal(t, []domain.ChangeKind{domain.ChangeCommentCreated}, f.pub.kinds())
}

func TestCreateComment_UnpublishedEventPersistsNothing(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.svc.Create(context.Background(), "u1", "draft", "too early")
	assert.ErrorIs(t, err, domain.ErrEventNotPublished)
	assert.Empty(t, f.repo.comments)
	assert.Empty(t, f.pub.kinds())
}

func TestCreateComment_Validation(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	var verr *domain.ValidationError
	_, err := f.svc.Create(ctx, "u1", "e1", "")
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.Create(ctx, "u1", "e1", strings.Repeat("x", domain.MaxCommentLength+1))
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.Create(ctx, "ghost", "e1", "hi")
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateByAuthor(t *testing.T) {
	f := newCommentFixture(t)
	pending := f.seed("c1", "u1", domain.CommentPending)
	f.seed("c2", "u1", domain.CommentApproved)
	ctx := context.Background()

	updated, err := f.svc.UpdateByAuthor(ctx, "u1", "c1", "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
	assert.False(t, updated.UpdatedOn.Before(pending.UpdatedOn))

	_, err = f.svc.UpdateByAuthor(ctx, "u2", "c1", "hijack")
	assert.True(t, domain.IsNotFound(err), "foreign comments look absent")

	_, err = f.svc.UpdateByAuthor(ctx, "u1", "c2", "too late")
	assert.ErrorIs(t, err, domain.ErrCommentNotPending)
	assert.Equal(t, "text of c2", f.repo.comments["c2"].Text)
}

func TestDeleteByAuthor(t *testing.T) {
	f := newCommentFixture(t)
	f.seed("c1", "u1", domain.CommentApproved)
	ctx := context.Background()

	err := f.svc.DeleteByAuthor(ctx, "u2", "c1")
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, f.svc.DeleteByAuthor(ctx, "u1", "c1"))
	assert.Empty(t, f.repo.comments)
}

func TestListPublishedForEvent(t *testing.T) {
	f := newCommentFixture(t)
	f.seed("c1", "u1", domain.CommentApproved)
	f.seed("c2", "u1", domain.CommentPending)
	f.seed("c3", "u2", domain.CommentApproved)
	f.seed("c4", "u2", domain.CommentRejected)
	ctx := context.Background()

	got, err := f.svc.ListPublishedForEvent(ctx, "e1", domain.Page{From: 0, Size: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "c3", got[1].ID)

	second, err := f.svc.ListPublishedForEvent(ctx, "e1", domain.Page{From: 1, Size: 1})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "c3", second[0].ID)

	_, err = f.svc.ListPublishedForEvent(ctx, "missing", domain.Page{Size: 10})
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.ListPublishedForEvent(ctx, "e1", domain.Page{Size: 0})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAdminSearch(t *testing.T) {
	f := newCommentFixture(t)
	f.seed("c1", "u1", domain.CommentApproved)
	f.seed("c2", "u1", domain.CommentPending)
	f.seed("c3", "u2", domain.CommentApproved)
	ctx := context.Background()

	all, err := f.svc.AdminSearch(ctx, domain.CommentSearch{Page: domain.Page{Size: 10}})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byAuthor, err := f.svc.AdminSearch(ctx, domain.CommentSearch{
		AuthorID: domain.Some("u1"),
		Status:   domain.Some(domain.CommentApproved),
		Page:     domain.Page{Size: 10},
	})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "c1", byAuthor[0].ID)

	future, err := f.svc.AdminSearch(ctx, domain.CommentSearch{
		Start: domain.Some(time.Now().Add(time.Hour)),
		Page:  domain.Page{Size: 10},
	})
	require.NoError(t, err)
	assert.Empty(t, future)

	inverted, err := f.svc.AdminSearch(ctx, domain.CommentSearch{
		Start: domain.Some(time.Now().Add(-time.Hour)),
		End:   domain.Some(time.Now().Add(-2 * time.Hour)),
		Page:  domain.Page{Size: 10},
	})
	require.NoError(t, err)
	assert.NotNil(t, inverted)
	assert.Empty(t, inverted)
}

func TestListByStatus(t *testing.T) {
	f := newCommentFixture(t)
	f.seed("c1", "u1", domain.CommentRejected)
	f.seed("c2", "u1", domain.CommentPending)
	ctx := context.Background()

	got, err := f.svc.ListByStatus(ctx, "e1", domain.CommentRejected)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)

	_, err = f.svc.ListByStatus(ctx, "missing", domain.CommentRejected)
	assert.True(t, domain.IsNotFound(err))
}

func TestPatchByAdmin(t *testing.T) {
	f := newCommentFixture(t)
	f.seed("c1", "u1", domain.CommentPending)
	ctx := context.Background()

	approved, err := f.svc.PatchByAdmin(ctx, "c1", domain.CommentApproved, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.CommentApproved, approved.Status)
	assert.Equal(t, "text of c1", approved.Text)

	text := "redacted"
	rejected, err := f.svc.PatchByAdmin(ctx, "c1", domain.CommentRejected, &text)
	require.NoError(t, err)
	assert.Equal(t, domain.CommentRejected, rejected.Status)
	assert.Equal(t, "redacted", f.repo.comments["c1"].Text)

	_, err = f.svc.PatchByAdmin(ctx, "c1", domain.CommentPending, nil)
	assert.ErrorIs(t, err, domain.ErrPendingModeration)
	assert.Equal(t, domain.CommentRejected, f.repo.comments["c1"].Status)

	_, err = f.svc.PatchByAdmin(ctx, "c1", domain.CommentStatus("ARCHIVED"), nil)
	var invalid *domain.ValidationError
	assert.ErrorAs(t, err, &invalid)

	_, err = f.svc.PatchByAdmin(ctx, "nope", domain.CommentApproved, nil)
	assert.True(t, domain.IsNotFound(err))

	assert.Equal(t, []domain.ChangeKind{
		domain.ChangeCommentModerated,
		domain.ChangeCommentModerated,
	}, f.pub.kinds())
}

func TestDeleteByAdmin(t *testing.T) {
	f := newCommentFixture(t)
	f.seed("c1", "u2", domain.CommentPending)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteByAdmin(ctx, "c1"))
	assert.True(t, domain.IsNotFound(f.svc.DeleteByAdmin(ctx, "c1")))
}
