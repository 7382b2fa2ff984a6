package services

import (
	"context"
	"testing"

	"community/db"
	"community/models"
	"community/store"

	"github.com/stretchr/testify/require"
)

func TestCreatePostRoundTrip(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "alice")

	created, err := ps.CreatePost(ctx, author.ID, "Hello", "World", "aW1n")
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := ps.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Hello", got.Title)
	require.Equal(t, "World", got.Content)
	require.Equal(t, "aW1n", got.ImageBase64)
	require.Equal(t, author.ID, got.AuthorID)
	require.Equal(t, "alice", got.AuthorNickname)
	require.False(t, got.CreatedAt.IsZero())
}

func TestCreatePostEmptyTitle(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "alice")

	_, err := ps.CreatePost(ctx, author.ID, "", "content", "")
	require.ErrorIs(t, err, store.ErrValidation)

	_, err = ps.CreatePost(ctx, author.ID, "   ", "content", "")
	require.ErrorIs(t, err, store.ErrValidation)

	// Документ не должен был создаться
	var count int64
	require.NoError(t, db.ORM.Model(&models.Post{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreatePostEmptyContent(t *testing.T) {
	setupTestDB(t)
	ps := NewPostService()

	author := createTestUser(t, "alice")

	_, err := ps.CreatePost(context.Background(), author.ID, "title", "", "")
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestCreatePostRequiresIdentity(t *testing.T) {
	setupTestDB(t)
	ps := NewPostService()

	_, err := ps.CreatePost(context.Background(), 0, "title", "content", "")
	require.ErrorIs(t, err, store.ErrAuth)
}

func TestUpdatePostByAuthor(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "alice")
	created, err := ps.CreatePost(ctx, author.ID, "Hello", "World", "aW1n")
	require.NoError(t, err)

	err = ps.UpdatePost(ctx, created.ID, author.ID, "Hello v2", "World v2", "")
	require.NoError(t, err)

	got, err := ps.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Hello v2", got.Title)
	require.Equal(t, "World v2", got.Content)
	require.Equal(t, "", got.ImageBase64)

	// Поля автора и created_at не трогаются
	require.Equal(t, author.ID, got.AuthorID)
	require.Equal(t, "alice", got.AuthorNickname)
	require.Equal(t, created.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestUpdatePostByStrangerFails(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "alice")
	stranger := createTestUser(t, "bob")

	created, err := ps.CreatePost(ctx, author.ID, "Hello", "World", "")
	require.NoError(t, err)

	err = ps.UpdatePost(ctx, created.ID, stranger.ID, "Hacked", "Hacked", "")
	require.ErrorIs(t, err, store.ErrAuth)

	// Пост не изменился
	got, err := ps.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Hello", got.Title)
	require.Equal(t, "World", got.Content)
}

func TestUpdatePostMissing(t *testing.T) {
	setupTestDB(t)
	ps := NewPostService()

	author := createTestUser(t, "alice")

	err := ps.UpdatePost(context.Background(), 9999, author.ID, "title", "content", "")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthorIDInvariantAcrossUpdates(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService()

	author := createTestUser(t, "alice")
	created, err := ps.CreatePost(ctx, author.ID, "v1", "v1", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, ps.UpdatePost(ctx, created.ID, author.ID, "title", "content", ""))
		got, err := ps.GetPost(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, author.ID, got.AuthorID)
	}
}

func TestGetPostMissing(t *testing.T) {
	setupTestDB(t)
	ps := NewPostService()

	_, err := ps.GetPost(context.Background(), 42)
	require.ErrorIs(t, err, store.ErrNotFound)
}
