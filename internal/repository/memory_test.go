package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	clock := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, repo.SetSession(ctx, "default", testSession()))
		got, err := repo.GetSession(ctx, "default")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "u1", got.User.ID)
	})

	t.Run("Missing", func(t *testing.T) {
		got, err := repo.GetSession(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, repo.SetSession(ctx, "old", testSession()))
		clock = clock.Add(2 * time.Hour)
		got, err := repo.GetSession(ctx, "old")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, repo.SetSession(ctx, "x", testSession()))
		require.NoError(t, repo.ClearSession(ctx, "x"))
		got, _ := repo.GetSession(ctx, "x")
		assert.Nil(t, got)
	})
}
