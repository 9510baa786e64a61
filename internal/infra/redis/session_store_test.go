package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"quizboard-service/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, err := NewSessionStore(newClient(mr), time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.False(t, ok)

	state := domain.SessionState{Order: []int64{2, 3, 1}, Index: 1, Score: 1, Total: 3}
	require.NoError(t, store.Set(ctx, "s1", state))
	require.True(t, mr.Exists("quiz:session:s1"), "expected redis key to be set")
	require.Equal(t, time.Minute, mr.TTL("quiz:session:s1"))

	got, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, state, got)

	require.NoError(t, store.Delete(ctx, "s1"))
	require.False(t, mr.Exists("quiz:session:s1"), "expected redis key to be removed")
}

func TestSessionStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, err := NewSessionStore(newClient(mr), time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s1", domain.SessionState{Order: []int64{1}, Total: 1}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionStoreRequiresClient(t *testing.T) {
	_, err := NewSessionStore(nil, time.Minute)
	require.ErrorIs(t, err, errNoClient)
}
