package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveNickname(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewProfileService()

	alice := createTestUser(t, "alice")

	require.Equal(t, "alice", ps.ResolveNickname(ctx, alice.ID))
	require.Equal(t, FallbackNickname, ps.ResolveNickname(ctx, 999))
	require.Equal(t, FallbackNickname, ps.ResolveNickname(ctx, 0))
}

func TestDisplayNamePrefersSnapshot(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewProfileService()

	alice := createTestUser(t, "alice")

	// Снапшот выигрывает даже при живом профиле
	require.Equal(t, "old_alice", ps.DisplayName(ctx, "old_alice", alice.ID))
	// Пустой снапшот - живой поиск
	require.Equal(t, "alice", ps.DisplayName(ctx, "", alice.ID))
	// Ни снапшота, ни профиля - fallback
	require.Equal(t, FallbackNickname, ps.DisplayName(ctx, "", 999))
}
