// Package memory keeps sessions in the process cache when no database is
// configured.
package memory

import (
	"context"
	"time"

	"agence-dashboard/internal/domain"
	"agence-dashboard/pkg/cache"

	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"

type sessionRepository struct {
	cache cache.CacheService
}

func NewSessionRepository(c cache.CacheService) domain.SessionRepository {
	return &sessionRepository{cache: c}
}

func (r *sessionRepository) Save(_ context.Context, s *domain.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}
	cp := *s
	r.cache.Set(sessionKeyPrefix+s.ID.String(), &cp, ttl)
	return nil
}

func (r *sessionRepository) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	v, ok := r.cache.Get(sessionKeyPrefix + id.String())
	if !ok {
		return nil, domain.ErrNoSession
	}
	s, ok := v.(*domain.Session)
	if !ok {
		return nil, domain.ErrNoSession
	}
	cp := *s
	return &cp, nil
}

func (r *sessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.cache.Delete(sessionKeyPrefix + id.String())
	return nil
}
