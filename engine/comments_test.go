package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordblog/blogapi/store"
)

func TestCreateComment(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	_, ident := mustSignup(t, e, "jane@example.com")
	post := mustCreatePost(t, e, ident, "Hello", true)

	comment, err := e.CreateComment(ctx, ident, post.ID, "well said")
	require.NoError(t, err)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, ident.UserID, comment.AuthorID)
	assert.Equal(t, testTime, comment.CreatedAt)
	assert.Nil(t, comment.EditedAt)
}

func TestCreateCommentParentMustExist(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, ident := mustSignup(t, e, "jane@example.com")

	_, err := e.CreateComment(context.Background(), ident, 999, "hello?")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "comment's parent post doesn't exist", Message(err))
}

func TestCreateCommentRequiresAuth(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, ident := mustSignup(t, e, "jane@example.com")
	post := mustCreatePost(t, e, ident, "Hello", true)

	_, err := e.CreateComment(context.Background(), nil, post.ID, "anon")
	require.Error(t, err)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestCreateCommentEmptyContent(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, ident := mustSignup(t, e, "jane@example.com")
	post := mustCreatePost(t, e, ident, "Hello", true)

	_, err := e.CreateComment(context.Background(), ident, post.ID, "   ")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestListCommentsOldestFirst(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	_, ident := mustSignup(t, e, "jane@example.com")
	post := mustCreatePost(t, e, ident, "Hello", true)

	first, err := e.CreateComment(ctx, ident, post.ID, "first")
	require.NoError(t, err)
	e.now = func() time.Time { return testTime.Add(time.Minute) }
	second, err := e.CreateComment(ctx, ident, post.ID, "second")
	require.NoError(t, err)

	comments, err := e.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)
}

func TestListCommentsMissingPost(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.ListComments(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateCommentOwnership(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	_, author := mustSignup(t, e, "author@example.com")
	_, other := mustSignup(t, e, "other@example.com")
	post := mustCreatePost(t, e, author, "Hello", true)
	comment, err := e.CreateComment(ctx, author, post.ID, "mine")
	require.NoError(t, err)

	_, err = e.UpdateComment(ctx, other, post.ID, comment.ID, "hijacked")
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Equal(t, "no authorization", Message(err))
}

func TestUpdateCommentPostMismatch(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	_, ident := mustSignup(t, e, "jane@example.com")
	postA := mustCreatePost(t, e, ident, "A", true)
	postB := mustCreatePost(t, e, ident, "B", true)
	comment, err := e.CreateComment(ctx, ident, postA.ID, "on A")
	require.NoError(t, err)

	_, err = e.UpdateComment(ctx, ident, postB.ID, comment.ID, "moved?")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUpdateCommentPreservesCreatedAt(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	_, ident := mustSignup(t, e, "jane@example.com")
	post := mustCreatePost(t, e, ident, "Hello", true)
	comment, err := e.CreateComment(ctx, ident, post.ID, "v1")
	require.NoError(t, err)

	later := testTime.Add(time.Hour)
	e.now = func() time.Time { return later }

	updated, err := e.UpdateComment(ctx, ident, post.ID, comment.ID, "v2")
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Content)
	assert.Equal(t, comment.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.EditedAt)
	assert.Equal(t, later, *updated.EditedAt)
}

func TestDeleteComment(t *testing.T) {
	e, stores, _ := newTestEngine(t)
	ctx := context.Background()
	_, ident := mustSignup(t, e, "jane@example.com")
	post := mustCreatePost(t, e, ident, "Hello", true)
	comment, err := e.CreateComment(ctx, ident, post.ID, "gone soon")
	require.NoError(t, err)

	require.NoError(t, e.DeleteComment(ctx, ident, post.ID, comment.ID))
	_, err = stores.Comments().GetByID(ctx, comment.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteCommentOwnership(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	_, author := mustSignup(t, e, "author@example.com")
	_, other := mustSignup(t, e, "other@example.com")
	post := mustCreatePost(t, e, author, "Hello", true)
	comment, err := e.CreateComment(ctx, author, post.ID, "mine")
	require.NoError(t, err)

	err = e.DeleteComment(ctx, other, post.ID, comment.ID)
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestDeleteCommentMissing(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, ident := mustSignup(t, e, "jane@example.com")
	post := mustCreatePost(t, e, ident, "Hello", true)

	err := e.DeleteComment(context.Background(), ident, post.ID, 999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
