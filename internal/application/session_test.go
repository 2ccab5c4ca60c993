package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/infrastructure/storage"
)

func TestSessionService_AttachPhotoAndSetMenu(t *testing.T) {
	repo := storage.NewMemorySessionStore()
	svc := NewSessionService(repo)
	ctx := context.Background()

	session, err := svc.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateRoot, session.Menu)
	require.False(t, session.HasPhoto())

	session, err = svc.AttachPhoto(ctx, 1, 10, "/tmp/a.jpg")
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, session.Menu)

	session, err = svc.SetMenu(ctx, 1, 10, entity.StateCropMenu)
	require.NoError(t, err)
	require.Equal(t, entity.StateCropMenu, session.Menu)
	require.Equal(t, "/tmp/a.jpg", session.PhotoPath)

	session, err = svc.AttachPhoto(ctx, 1, 10, "/tmp/b.jpg")
	require.NoError(t, err)
	require.Equal(t, "/tmp/b.jpg", session.PhotoPath)
	require.Equal(t, entity.StateMainMenu, session.Menu)
}

func TestSessionService_ForgetPhoto(t *testing.T) {
	repo := storage.NewMemorySessionStore()
	svc := NewSessionService(repo)
	ctx := context.Background()

	_, err := svc.AttachPhoto(ctx, 2, 20, "/tmp/c.jpg")
	require.NoError(t, err)

	session, err := svc.ForgetPhoto(ctx, 2, 20)
	require.NoError(t, err)
	require.False(t, session.HasPhoto())
	require.Equal(t, entity.StateRoot, session.Menu)
	require.Equal(t, 1, svc.Count(ctx))
}
