package repository

import (
	"context"
	"sync"
	"time"

	"marketplace/internal/models"
)

type memoryEntry struct {
	session   *models.Session
	expiresAt time.Time
}

type MemorySessionRepository struct {
	sessions sync.Map
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl: ttl,
		now: time.Now,
	}
}

func (r *MemorySessionRepository) GetSession(ctx context.Context, name string) (*models.Session, error) {
	val, ok := r.sessions.Load(name)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.ttl > 0 && r.now().After(entry.expiresAt) {
		r.sessions.Delete(name)
		return nil, nil
	}
	return entry.session, nil
}

func (r *MemorySessionRepository) SetSession(ctx context.Context, name string, session *models.Session) error {
	r.sessions.Store(name, &memoryEntry{session: session, expiresAt: r.now().Add(r.ttl)})
	return nil
}

func (r *MemorySessionRepository) ClearSession(ctx context.Context, name string) error {
	r.sessions.Delete(name)
	return nil
}
