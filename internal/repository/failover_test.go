package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"marketplace/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetSession(ctx context.Context, name string) (*models.Session, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockRepo) SetSession(ctx context.Context, name string, session *models.Session) error {
	args := m.Called(ctx, name, session)
	return args.Error(0)
}

func (m *mockRepo) ClearSession(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func TestFailoverSessionRepository(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()
	down := errors.New("redis down")

	t.Run("PrimaryHealthy", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := NewMemorySessionRepository(time.Hour)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		sess := testSession()
		primary.On("SetSession", ctx, "default", sess).Return(nil).Once()
		primary.On("GetSession", ctx, "default").Return(sess, nil).Once()

		require.NoError(t, repo.SetSession(ctx, "default", sess))
		got, err := repo.GetSession(ctx, "default")
		require.NoError(t, err)
		assert.Equal(t, sess, got)
		primary.AssertExpectations(t)

		fromFallback, _ := fallback.GetSession(ctx, "default")
		assert.Nil(t, fromFallback)
	})

	t.Run("FallsBackAndRecovers", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := NewMemorySessionRepository(time.Hour)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		clock := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return clock }

		sess := testSession()
		primary.On("SetSession", ctx, "default", sess).Return(down).Once()
		require.NoError(t, repo.SetSession(ctx, "default", sess))
		assert.True(t, repo.isDown.Load())

		// still inside the recovery window: primary is not touched
		got, err := repo.GetSession(ctx, "default")
		require.NoError(t, err)
		assert.Equal(t, sess, got)

		clock = clock.Add(2 * time.Minute)
		primary.On("GetSession", ctx, "default").Return(sess, nil).Once()
		got, err = repo.GetSession(ctx, "default")
		require.NoError(t, err)
		assert.Equal(t, sess, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryProbeFails", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := NewMemorySessionRepository(time.Hour)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		clock := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return clock }

		primary.On("GetSession", ctx, "default").Return(nil, down).Twice()
		got, err := repo.GetSession(ctx, "default")
		require.NoError(t, err)
		assert.Nil(t, got)

		clock = clock.Add(2 * time.Minute)
		_, err = repo.GetSession(ctx, "default")
		require.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("ClearHitsBothStores", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := NewMemorySessionRepository(time.Hour)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		require.NoError(t, fallback.SetSession(ctx, "default", testSession()))
		primary.On("ClearSession", ctx, "default").Return(nil).Once()

		require.NoError(t, repo.ClearSession(ctx, "default"))
		got, _ := fallback.GetSession(ctx, "default")
		assert.Nil(t, got)
		primary.AssertExpectations(t)
	})
}
