package services

import (
	"context"
	"strings"
	"testing"

	"gamifiedFitnessAPI/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialService_AddAndRemoveFriend(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "clerk_a", "alice")
	bob := env.register(t, "clerk_b", "bob")
	ss := NewSocialService(env.store, env.clock)

	code, err := ss.GetFriendCode(ctx, "clerk_b")
	require.NoError(t, err)
	assert.Equal(t, bob.SocialStats.FriendCode, code)

	summary, err := ss.AddFriend(ctx, "clerk_a", "  "+strings.ToLower(code)+" ")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, summary.ID)
	assert.Equal(t, "bob", summary.Username)

	assert.True(t, env.reload(t, "clerk_a").HasFriend(bob.ID))
	assert.True(t, env.reload(t, "clerk_b").HasFriend(alice.ID))

	_, err = ss.AddFriend(ctx, "clerk_a", code)
	assert.ErrorIs(t, err, ErrAlreadyFriends)

	friends, err := ss.GetFriends(ctx, "clerk_b")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, alice.ID, friends[0].ID)

	require.NoError(t, ss.RemoveFriend(ctx, "clerk_b", alice.ID))
	assert.Empty(t, env.reload(t, "clerk_a").SocialStats.Friends)
	assert.Empty(t, env.reload(t, "clerk_b").SocialStats.Friends)
}

func TestSocialService_AddFriendRejections(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "clerk_a", "alice")
	ss := NewSocialService(env.store, env.clock)

	_, err := ss.AddFriend(ctx, "clerk_a", alice.SocialStats.FriendCode)
	assert.ErrorIs(t, err, ErrSelfFriend)

	_, err = ss.AddFriend(ctx, "clerk_a", "ZZZZZZZZ")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = ss.AddFriend(ctx, "clerk_a", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = ss.RemoveFriend(ctx, "clerk_a", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
