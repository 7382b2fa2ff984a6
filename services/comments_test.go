package services

import (
	"context"
	"testing"

	"community/store"

	"github.com/stretchr/testify/require"
)

func TestAddCommentAndListAscending(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()
	cs := NewCommentService()

	author := createTestUser(t, "alice")
	post, err := ps.CreatePost(ctx, author.ID, "Hello", "World", "")
	require.NoError(t, err)

	first, err := cs.AddComment(ctx, post.ID, author.ID, "first")
	require.NoError(t, err)
	second, err := cs.AddComment(ctx, post.ID, author.ID, "second")
	require.NoError(t, err)

	comments, err := cs.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, first.ID, comments[0].ID)
	require.Equal(t, second.ID, comments[1].ID)
	require.Equal(t, "first", comments[0].Text)
	require.Equal(t, "second", comments[1].Text)
}

func TestAddCommentTwoAuthors(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()
	cs := NewCommentService()

	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	post, err := ps.CreatePost(ctx, alice.ID, "Hello", "World", "")
	require.NoError(t, err)

	_, err = cs.AddComment(ctx, post.ID, alice.ID, "mine")
	require.NoError(t, err)
	_, err = cs.AddComment(ctx, post.ID, bob.ID, "yours")
	require.NoError(t, err)

	comments, err := cs.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, alice.ID, comments[0].AuthorID)
	require.Equal(t, bob.ID, comments[1].AuthorID)
}

func TestAddCommentValidation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	cs := NewCommentService()

	user := createTestUser(t, "alice")

	_, err := cs.AddComment(ctx, 1, user.ID, "")
	require.ErrorIs(t, err, store.ErrValidation)

	_, err = cs.AddComment(ctx, 1, 0, "text")
	require.ErrorIs(t, err, store.ErrAuth)

	_, err = cs.AddComment(ctx, 0, user.ID, "text")
	require.ErrorIs(t, err, store.ErrValidation)
}

// Известный пробел: существование родительского поста на момент записи не
// перепроверяется, комментарий к уже удаленному посту остается сиротой.
// Поведение исходного приложения сохранено осознанно, тест его фиксирует.
func TestAddCommentDoesNotVerifyParentPost(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	cs := NewCommentService()

	user := createTestUser(t, "alice")

	comment, err := cs.AddComment(ctx, 12345, user.ID, "orphan-to-be")
	require.NoError(t, err)
	require.NotZero(t, comment.ID)
}

func TestListCommentViewsResolvesNicknames(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()
	cs := NewCommentService()

	alice := createTestUser(t, "alice")
	post, err := ps.CreatePost(ctx, alice.ID, "Hello", "World", "")
	require.NoError(t, err)

	_, err = cs.AddComment(ctx, post.ID, alice.ID, "hi")
	require.NoError(t, err)

	// Комментарий от несуществующего автора деградирует до fallback
	_, err = cs.AddComment(ctx, post.ID, 999, "ghost")
	require.NoError(t, err)

	views, err := cs.ListCommentViews(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "alice", views[0].Nickname)
	require.Equal(t, FallbackNickname, views[1].Nickname)
}

func TestCountComments(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()
	cs := NewCommentService()

	author := createTestUser(t, "alice")
	post, err := ps.CreatePost(ctx, author.ID, "Hello", "World", "")
	require.NoError(t, err)

	count, err := cs.CountComments(ctx, post.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	for i := 0; i < 3; i++ {
		_, err = cs.AddComment(ctx, post.ID, author.ID, "c")
		require.NoError(t, err)
	}

	count, err = cs.CountComments(ctx, post.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestWatchCommentsEmitsOnChange(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()
	cs := NewCommentService()

	author := createTestUser(t, "alice")
	post, err := ps.CreatePost(ctx, author.ID, "Hello", "World", "")
	require.NoError(t, err)

	sub := cs.WatchComments(ctx, post.ID)
	defer sub.Cancel()

	// Первый снапшот приходит сразу при подписке
	initial := receiveCommentSnapshot(t, sub)
	require.Empty(t, initial)

	_, err = cs.AddComment(ctx, post.ID, author.ID, "hi")
	require.NoError(t, err)

	next := receiveCommentSnapshot(t, sub)
	require.Len(t, next, 1)
	require.Equal(t, "hi", next[0].Text)
}

func TestWatchCommentsCancelIdempotent(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()
	cs := NewCommentService()

	author := createTestUser(t, "alice")
	post, err := ps.CreatePost(ctx, author.ID, "Hello", "World", "")
	require.NoError(t, err)

	sub := cs.WatchComments(ctx, post.ID)
	sub.Cancel()
	sub.Cancel() // повторная отмена безопасна
}
