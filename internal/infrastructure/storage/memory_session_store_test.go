package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"photo-bot/internal/domain/entity"
)

func TestMemorySessionStore_GetCreatesSession(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	s, err := store.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateRoot, s.Menu)
	require.Equal(t, int64(10), s.ChatID)
	require.Equal(t, 1, store.Count(ctx))
}

func TestMemorySessionStore_SaveOverwritesPhoto(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	s, err := store.Get(ctx, 1, 10)
	require.NoError(t, err)
	s.AttachPhoto("uploads/first.jpg")
	require.NoError(t, store.Save(ctx, s))

	s.AttachPhoto("uploads/second.jpg")
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, "uploads/second.jpg", got.PhotoPath)
	require.Equal(t, entity.StateMainMenu, got.Menu)
}

func TestMemorySessionStore_GetReturnsCopy(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	s, err := store.Get(ctx, 2, 20)
	require.NoError(t, err)
	s.SetMenu(entity.StateCropMenu)

	got, err := store.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateRoot, got.Menu)
}
