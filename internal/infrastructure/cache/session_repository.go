package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
)

const sessionKeyPrefix = "session:"

// SessionRepository keeps sessions in Redis keyed by token, expiring with the
// session itself so stale tokens vanish without a sweeper.
type SessionRepository struct {
	cache *RedisCache
}

func NewSessionRepository(cache *RedisCache) *SessionRepository {
	return &SessionRepository{cache: cache}
}

func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return r.cache.Set(ctx, sessionKeyPrefix+session.Token, data, ttl)
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*entities.Session, error) {
	raw, err := r.cache.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		return nil, err
	}
	var session entities.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	return r.cache.Del(ctx, sessionKeyPrefix+token)
}

var _ repositories.SessionRepository = (*SessionRepository)(nil)
