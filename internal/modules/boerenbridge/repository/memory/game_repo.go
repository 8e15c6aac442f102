// Package memory provides an in-memory live game store for
// development and tests. Same contract as the Redis store, including
// the optimistic version check.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
)

// GameRepository implements domain.GameRepository in memory. Games are
// stored serialized so callers never share object graphs with the
// store, mirroring the Redis round-trip.
type GameRepository struct {
	games    map[string][]byte
	versions map[string]int64
	mu       sync.RWMutex
}

// NewGameRepository creates a new memory game repository.
func NewGameRepository() *GameRepository {
	return &GameRepository{
		games:    make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func (r *GameRepository) Get(ctx context.Context, id string) (*domain.Game, error) {
	r.mu.RLock()
	data, ok := r.games[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, id)
	}
	var game domain.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("%w: game %s does not unmarshal: %v", domain.ErrCorruptState, id, err)
	}
	return &game, nil
}

func (r *GameRepository) Save(ctx context.Context, game *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	expected := game.Version
	if stored, ok := r.versions[game.ID]; ok && stored != expected {
		return fmt.Errorf("%w: stored %d, saving from %d", domain.ErrVersionConflict, stored, expected)
	}

	game.Version = expected + 1
	data, err := json.Marshal(game)
	if err != nil {
		game.Version = expected
		return fmt.Errorf("failed to marshal game %s: %w", game.ID, err)
	}
	r.games[game.ID] = data
	r.versions[game.ID] = game.Version
	return nil
}

func (r *GameRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, id)
	delete(r.versions, id)
	return nil
}

func (r *GameRepository) Keys(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	return ids, nil
}
