package domain

import "errors"

// Error taxonomy of the game core. All operations validate before
// mutating, so a returned error means the game state is unchanged.
var (
	// ErrInvalidMove marks a move the rules forbid: playing a card not
	// in hand, betting out of range, acting out of turn.
	ErrInvalidMove = errors.New("invalid move")

	// ErrIllegalPhase marks an operation invoked outside the state it
	// is valid in, e.g. shuffling before the game started. A caller
	// bug, not a recoverable game event.
	ErrIllegalPhase = errors.New("operation not allowed in current phase")

	// ErrCorruptState marks a game instance whose internal arrays are
	// inconsistent. Fatal for that game; surfaced to the operator.
	ErrCorruptState = errors.New("corrupt game state")

	// ErrVersionConflict is returned by the live store when a save
	// carries a stale version (a concurrent writer got there first).
	ErrVersionConflict = errors.New("game version conflict")

	// ErrGameNotFound is returned by the live store for an unknown key.
	ErrGameNotFound = errors.New("game not found")
)
