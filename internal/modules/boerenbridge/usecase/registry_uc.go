package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"github.com/jannikanker/OhHellCardGame/pkg/logger"
)

// RegistryUseCase manages game registries: the durable rosters live
// games are created from. Creating and deleting registries is a system
// admin operation; registry admins manage their own roster.
type RegistryUseCase struct {
	registries  domain.RegistryRepository
	games       domain.GameRepository
	systemAdmin string
	newRNG      func() *rand.Rand
}

// NewRegistryUseCase creates a new registry use case.
func NewRegistryUseCase(registries domain.RegistryRepository, games domain.GameRepository, systemAdmin string) *RegistryUseCase {
	return &RegistryUseCase{
		registries:  registries,
		games:       games,
		systemAdmin: systemAdmin,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

func (uc *RegistryUseCase) isSystemAdmin(actor Actor) bool {
	return uc.systemAdmin != "" && strings.EqualFold(actor.Email, uc.systemAdmin)
}

// CreateRegistry creates a roster with nrPlayers empty seats. System
// admin only; the creating admin takes the first seat.
func (uc *RegistryUseCase) CreateRegistry(ctx context.Context, actor Actor, name, competitionID string, nrPlayers int) (*domain.GameRegistry, error) {
	if !uc.isSystemAdmin(actor) {
		return nil, fmt.Errorf("%w: only the system admin can create registries", domain.ErrInvalidMove)
	}
	if existing, _ := uc.registries.GetByName(ctx, name); existing != nil {
		return nil, fmt.Errorf("%w: registry %s already exists", domain.ErrInvalidMove, name)
	}

	reg, err := domain.NewGameRegistry(name, competitionID, nrPlayers)
	if err != nil {
		return nil, err
	}
	reg.Players[0].Email = actor.Email

	if err := uc.registries.Create(ctx, reg); err != nil {
		return nil, err
	}
	logger.Info(ctx).
		Str("registry_id", reg.ID).
		Str("name", name).
		Int("nr_players", nrPlayers).
		Msg("Registry created")
	return reg, nil
}

// ListRegistries returns the registries visible to the actor: all of
// them for the system admin, otherwise only rosters the actor plays in.
func (uc *RegistryUseCase) ListRegistries(ctx context.Context, actor Actor) ([]*domain.GameRegistry, error) {
	regs, err := uc.registries.List(ctx)
	if err != nil {
		return nil, err
	}
	if uc.isSystemAdmin(actor) {
		return regs, nil
	}

	var visible []*domain.GameRegistry
	for _, reg := range regs {
		for _, p := range reg.Players {
			if strings.EqualFold(p.Email, actor.Email) {
				visible = append(visible, reg)
				break
			}
		}
	}
	return visible, nil
}

// SavePlayer binds an email to a seat of the registry. Registry admin only.
func (uc *RegistryUseCase) SavePlayer(ctx context.Context, actor Actor, registryID string, seat int, email string) (*domain.GameRegistry, error) {
	reg, err := uc.registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, err
	}
	if !uc.isSystemAdmin(actor) && !reg.IsAdminEmail(actor.Email) {
		return nil, fmt.Errorf("%w: only the registry admin can edit the roster", domain.ErrInvalidMove)
	}
	if seat < 0 || seat >= len(reg.Players) {
		return nil, fmt.Errorf("%w: seat %d out of range 0..%d", domain.ErrInvalidMove, seat, len(reg.Players)-1)
	}

	reg.Players[seat].Email = email
	if err := uc.registries.Update(ctx, reg); err != nil {
		return nil, err
	}
	logger.Info(ctx).
		Str("registry_id", registryID).
		Int("seat", seat).
		Str("email", email).
		Msg("Registry seat updated")
	return reg, nil
}

// ShufflePlayers randomizes which email gets which seat. Only valid
// while no live game exists for the registry.
func (uc *RegistryUseCase) ShufflePlayers(ctx context.Context, actor Actor, registryID string) (*domain.GameRegistry, error) {
	reg, err := uc.registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, err
	}
	if !uc.isSystemAdmin(actor) && !reg.IsAdminEmail(actor.Email) {
		return nil, fmt.Errorf("%w: only the registry admin can reseat players", domain.ErrInvalidMove)
	}
	if err := reg.ShufflePlayers(uc.newRNG()); err != nil {
		return nil, err
	}
	if err := uc.registries.Update(ctx, reg); err != nil {
		return nil, err
	}
	logger.Info(ctx).Str("registry_id", registryID).Msg("Registry seats shuffled")
	return reg, nil
}

// NewGame creates a live game from the registry roster. The game is
// stored in the live store under the registry name; the registry flips
// to the game-created state so the roster cannot be reseated mid-game.
func (uc *RegistryUseCase) NewGame(ctx context.Context, actor Actor, registryID string) (*domain.Game, error) {
	reg, err := uc.registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, err
	}
	if !uc.isSystemAdmin(actor) && !reg.IsAdminEmail(actor.Email) {
		return nil, fmt.Errorf("%w: only the registry admin can create a game", domain.ErrInvalidMove)
	}

	game, err := domain.NewGame(reg.Name, reg.CompetitionID, reg.Seats())
	if err != nil {
		return nil, err
	}
	if err := uc.games.Save(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to store new game %s: %w", game.ID, err)
	}

	reg.State = domain.RegistryStateGameCreated
	if err := uc.registries.Update(ctx, reg); err != nil {
		logger.Error(ctx).Err(err).Str("registry_id", registryID).Msg("Failed to flag registry as game-created")
	}

	logger.Info(ctx).
		Str("registry_id", registryID).
		Str("game_id", game.ID).
		Str("game_key", game.Key).
		Msg("Game created from registry")
	return game, nil
}

// RemoveGame deletes the registry's live game and reopens the roster.
func (uc *RegistryUseCase) RemoveGame(ctx context.Context, actor Actor, registryID string) error {
	reg, err := uc.registries.GetByID(ctx, registryID)
	if err != nil {
		return err
	}
	if !uc.isSystemAdmin(actor) && !reg.IsAdminEmail(actor.Email) {
		return fmt.Errorf("%w: only the registry admin can remove a game", domain.ErrInvalidMove)
	}

	if err := uc.games.Remove(ctx, reg.Name); err != nil {
		return fmt.Errorf("failed to remove live game %s: %w", reg.Name, err)
	}
	reg.State = domain.RegistryStateNoGame
	if err := uc.registries.Update(ctx, reg); err != nil {
		return err
	}
	logger.Warn(ctx).Str("registry_id", registryID).Str("game_id", reg.Name).Msg("Live game removed")
	return nil
}

// DeleteRegistry deletes a roster and its live game, if any. System
// admin only.
func (uc *RegistryUseCase) DeleteRegistry(ctx context.Context, actor Actor, registryID string) error {
	if !uc.isSystemAdmin(actor) {
		return fmt.Errorf("%w: only the system admin can delete registries", domain.ErrInvalidMove)
	}
	reg, err := uc.registries.GetByID(ctx, registryID)
	if err != nil {
		return err
	}
	if reg.State == domain.RegistryStateGameCreated {
		if err := uc.games.Remove(ctx, reg.Name); err != nil {
			logger.Warn(ctx).Err(err).Str("game_id", reg.Name).Msg("Failed to remove live game of deleted registry")
		}
	}
	if err := uc.registries.Delete(ctx, registryID); err != nil {
		return err
	}
	logger.Warn(ctx).Str("registry_id", registryID).Str("name", reg.Name).Msg("Registry deleted")
	return nil
}
