package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"deck-game-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SessionStore persists session state as JSONB, one row per player.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) Load(ctx context.Context, playerID string) (domain.SessionState, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM game_sessions WHERE player_id=$1`, playerID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SessionState{}, false, nil
	}
	if err != nil {
		return domain.SessionState{}, false, &domain.PersistenceError{Op: "load", Err: err}
	}

	var state domain.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.SessionState{}, false, &domain.PersistenceError{Op: "load", Err: fmt.Errorf("unmarshal state: %w", err)}
	}
	return state, true, nil
}

func (s *SessionStore) Save(ctx context.Context, playerID string, state domain.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return &domain.PersistenceError{Op: "save", Err: fmt.Errorf("marshal state: %w", err)}
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO game_sessions (player_id, state, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (player_id) DO UPDATE SET state=EXCLUDED.state, updated_at=now()`,
		playerID, raw)
	if err != nil {
		return &domain.PersistenceError{Op: "save", Err: err}
	}
	return nil
}
