package domain

import "context"

// GameRepository is the live (cache-first) game store, keyed by game
// ID. Reads and writes follow the load-mutate-save pattern; Save must
// reject a game whose Version does not follow the stored one, so a
// concurrent writer cannot silently overwrite an update.
type GameRepository interface {
	// Get loads a game. Returns ErrGameNotFound for an unknown ID.
	Get(ctx context.Context, id string) (*Game, error)

	// Save stores a game, bumping its Version. Returns
	// ErrVersionConflict when the stored version moved on.
	Save(ctx context.Context, game *Game) error

	// Remove deletes a game from the live store.
	Remove(ctx context.Context, id string) error

	// Keys lists the IDs of all live games.
	Keys(ctx context.Context) ([]string, error)
}
