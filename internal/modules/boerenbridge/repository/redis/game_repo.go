// Package redis implements the live game store on Redis. Games are
// stored as JSON blobs, cache-first: the live store is the source of
// truth for a running match, durable archival happens elsewhere.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "game:"

func gameKey(id string) string {
	return keyPrefix + id
}

// GameRepository implements domain.GameRepository using Redis.
type GameRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewGameRepository creates a new Redis game repository.
func NewGameRepository(rdb *redis.Client) *GameRepository {
	return &GameRepository{
		rdb: rdb,
		ttl: 7 * 24 * time.Hour, // abandoned games expire after a week
	}
}

// Get loads a game by ID.
func (r *GameRepository) Get(ctx context.Context, id string) (*domain.Game, error) {
	data, err := r.rdb.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, id)
		}
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}

	var game domain.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("%w: game %s does not unmarshal: %v", domain.ErrCorruptState, id, err)
	}
	return &game, nil
}

// Save stores a game with an optimistic version check: the write only
// lands when the stored version still matches the version the game was
// loaded with. On success the in-memory Version is bumped.
func (r *GameRepository) Save(ctx context.Context, game *domain.Game) error {
	key := gameKey(game.ID)
	expected := game.Version

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			// First save of this game.
		case err != nil:
			return fmt.Errorf("failed to read stored version: %w", err)
		default:
			var stored struct {
				Version int64 `json:"version"`
			}
			if err := json.Unmarshal(data, &stored); err != nil {
				return fmt.Errorf("%w: stored game %s does not unmarshal: %v", domain.ErrCorruptState, game.ID, err)
			}
			if stored.Version != expected {
				return fmt.Errorf("%w: stored %d, saving from %d", domain.ErrVersionConflict, stored.Version, expected)
			}
		}

		game.Version = expected + 1
		payload, err := json.Marshal(game)
		if err != nil {
			game.Version = expected
			return fmt.Errorf("failed to marshal game %s: %w", game.ID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err != nil {
			game.Version = expected
		}
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		game.Version = expected
		return fmt.Errorf("%w: key touched during save of %s", domain.ErrVersionConflict, game.ID)
	}
	return err
}

// Remove deletes a game from the live store.
func (r *GameRepository) Remove(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, gameKey(id)).Err()
}

// Keys lists the IDs of all live games.
func (r *GameRepository) Keys(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan game keys: %w", err)
	}
	return ids, nil
}
