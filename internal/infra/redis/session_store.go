package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"deck-game-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore persists serialized session state in Redis, one key per
// player. Redis is the source of truth here: consecutive turns may land on
// different instances, so nothing is kept in process memory.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, playerID string) (domain.SessionState, bool, error) {
	raw, err := s.client.Get(ctx, s.key(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SessionState{}, false, nil
	}
	if err != nil {
		return domain.SessionState{}, false, &domain.PersistenceError{Op: "load", Err: err}
	}

	var state domain.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.SessionState{}, false, &domain.PersistenceError{Op: "load", Err: err}
	}
	return state, true, nil
}

func (s *SessionStore) Save(ctx context.Context, playerID string, state domain.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return &domain.PersistenceError{Op: "save", Err: err}
	}
	if err := s.client.Set(ctx, s.key(playerID), raw, s.ttl).Err(); err != nil {
		return &domain.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *SessionStore) key(playerID string) string {
	return "game:session:" + playerID
}
