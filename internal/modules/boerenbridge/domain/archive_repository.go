package domain

import "context"

// ArchiveRepository persists terminal games durably. Archiving is
// invoked once per game-over transition; idempotence across duplicate
// invocations is the caller's concern.
type ArchiveRepository interface {
	// Archive writes the final snapshot and its per-player score rows
	// in one transaction.
	Archive(ctx context.Context, archive *GameArchive, scores []PlayerScore) error

	// TopScores returns the best archived player scores, highest first.
	TopScores(ctx context.Context, limit int) ([]GameScore, error)
}

// RegistryRepository persists game registries.
type RegistryRepository interface {
	Create(ctx context.Context, reg *GameRegistry) error
	Update(ctx context.Context, reg *GameRegistry) error
	GetByID(ctx context.Context, id string) (*GameRegistry, error)
	GetByName(ctx context.Context, name string) (*GameRegistry, error)
	List(ctx context.Context) ([]*GameRegistry, error)
	Delete(ctx context.Context, id string) error
}
