package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long reads stay on the fallback before the
// primary is tried again.
const recoveryInterval = time.Minute

// FailoverSessionRepository uses Redis while it answers and falls back to
// memory when it does not.
type FailoverSessionRepository struct {
	primary  domain.SessionRepository
	fallback domain.SessionRepository
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
	now       func() time.Time
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *FailoverSessionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = r.now()
	r.mu.Unlock()
}

// recoveryDue reports whether enough time has passed to probe the primary.
func (r *FailoverSessionRepository) recoveryDue() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Sub(r.lastCheck) > recoveryInterval
}

func (r *FailoverSessionRepository) GetSession(ctx context.Context, name string) (*models.Session, error) {
	if !r.isDown.Load() {
		session, err := r.primary.GetSession(ctx, name)
		if err == nil {
			return session, nil
		}
		r.markDown(err)
	} else if r.recoveryDue() {
		session, err := r.primary.GetSession(ctx, name)
		if err == nil {
			r.logger.Info().Msg("Primary session repository recovered")
			r.isDown.Store(false)
			return session, nil
		}
		r.mu.Lock()
		r.lastCheck = r.now()
		r.mu.Unlock()
	}

	return r.fallback.GetSession(ctx, name)
}

func (r *FailoverSessionRepository) SetSession(ctx context.Context, name string, session *models.Session) error {
	if !r.isDown.Load() {
		err := r.primary.SetSession(ctx, name, session)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetSession(ctx, name, session)
}

func (r *FailoverSessionRepository) ClearSession(ctx context.Context, name string) error {
	// both stores are cleared
	fallbackErr := r.fallback.ClearSession(ctx, name)
	if !r.isDown.Load() {
		err := r.primary.ClearSession(ctx, name)
		if err == nil {
			return fallbackErr
		}
		r.markDown(err)
	}
	return fallbackErr
}
