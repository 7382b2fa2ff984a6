package services

import (
	"context"
	"testing"

	"community/store"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

func TestIdentityRoundTrip(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	is := NewIdentityService()

	email := gofakeit.Email()

	userID, err := is.SignUp(ctx, email, "secret123", "alice")
	require.NoError(t, err)
	require.NotZero(t, userID)

	signedInID, token, err := is.SignIn(ctx, email, "secret123")
	require.NoError(t, err)
	require.Equal(t, userID, signedInID)
	require.NotEmpty(t, token)

	currentID, err := is.CurrentUser(ctx, token)
	require.NoError(t, err)
	require.Equal(t, userID, currentID)

	require.NoError(t, is.SignOut(ctx, userID))

	_, err = is.CurrentUser(ctx, token)
	require.ErrorIs(t, err, store.ErrAuth)
}

func TestSignUpDuplicate(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	is := NewIdentityService()

	email := gofakeit.Email()

	_, err := is.SignUp(ctx, email, "secret123", "alice")
	require.NoError(t, err)

	_, err = is.SignUp(ctx, email, "other", "alice2")
	require.ErrorIs(t, err, store.ErrAuth)
}

func TestSignUpValidation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	is := NewIdentityService()

	_, err := is.SignUp(ctx, "", "secret", "alice")
	require.ErrorIs(t, err, store.ErrValidation)

	_, err = is.SignUp(ctx, gofakeit.Email(), "", "alice")
	require.ErrorIs(t, err, store.ErrValidation)

	_, err = is.SignUp(ctx, gofakeit.Email(), "secret", "")
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestSignInWrongPassword(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	is := NewIdentityService()

	email := gofakeit.Email()
	_, err := is.SignUp(ctx, email, "secret123", "alice")
	require.NoError(t, err)

	_, _, err = is.SignIn(ctx, email, "wrong")
	require.ErrorIs(t, err, store.ErrAuth)

	_, _, err = is.SignIn(ctx, "nobody@example.com", "secret123")
	require.ErrorIs(t, err, store.ErrAuth)
}

func TestSignInInvalidatesOldToken(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	is := NewIdentityService()

	email := gofakeit.Email()
	_, err := is.SignUp(ctx, email, "secret123", "alice")
	require.NoError(t, err)

	_, oldToken, err := is.SignIn(ctx, email, "secret123")
	require.NoError(t, err)

	_, newToken, err := is.SignIn(ctx, email, "secret123")
	require.NoError(t, err)
	require.NotEqual(t, oldToken, newToken)

	_, err = is.CurrentUser(ctx, oldToken)
	require.ErrorIs(t, err, store.ErrAuth)

	_, err = is.CurrentUser(ctx, newToken)
	require.NoError(t, err)
}
