// Package usecase implements the business logic for the boerenbridge module.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"github.com/jannikanker/OhHellCardGame/pkg/logger"
)

// Push commands sent to connected clients.
const (
	CmdJoinedGame   = "joined_game"
	CmdPlayerJoined = "player_joined"
	CmdViewerJoined = "viewer_joined"
	CmdGameStarted  = "game_started"
	CmdShuffled     = "shuffled"
	CmdHandDealt    = "hand_dealt"
	CmdBetPlaced    = "bet_placed"
	CmdPlayedCard   = "played_card"
	CmdWinnerChosen = "winner_chosen"
	CmdTableCleaned = "table_cleaned"
	CmdNewRound     = "new_round"
	CmdRoundReset   = "round_reset"
	CmdGameReset    = "game_reset"
	CmdGameOver     = "game_over"
	CmdGameState    = "game_state"
	CmdTopScores    = "top_scores"
	CmdFreeSeats    = "available_players"
)

// Actor identifies who is performing an operation. It comes from
// the authenticated connection, never from the request payload.
type Actor struct {
	UserID int64
	Email  string
	Name   string
}

// GameUseCase drives live games: every operation loads a game from the
// live store, mutates it through the domain, saves it back and pushes
// the result to connected clients. Mutations on the same game are
// serialized through a per-game mutex; the store's version check backs
// that up across instances.
type GameUseCase struct {
	games       domain.GameRepository
	archive     domain.ArchiveRepository
	broadcaster domain.Broadcaster

	systemAdmin    string // email with controller rights on every game
	topScoresLimit int

	newRNG func() *rand.Rand

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	sf singleflight.Group
}

// NewGameUseCase creates a new game use case.
func NewGameUseCase(
	games domain.GameRepository,
	archive domain.ArchiveRepository,
	broadcaster domain.Broadcaster,
	systemAdmin string,
	topScoresLimit int,
) *GameUseCase {
	return &GameUseCase{
		games:          games,
		archive:        archive,
		broadcaster:    broadcaster,
		systemAdmin:    systemAdmin,
		topScoresLimit: topScoresLimit,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		locks: make(map[string]*sync.Mutex),
	}
}

// SetRNG overrides the deal RNG. Test hook.
func (uc *GameUseCase) SetRNG(newRNG func() *rand.Rand) {
	uc.newRNG = newRNG
}

func (uc *GameUseCase) gameLock(gameID string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	l, ok := uc.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		uc.locks[gameID] = l
	}
	return l
}

// mutate runs fn on a freshly loaded game and saves the result. Calls
// for the same game never overlap within this instance.
func (uc *GameUseCase) mutate(ctx context.Context, gameID string, fn func(*domain.Game) error) (*domain.Game, error) {
	l := uc.gameLock(gameID)
	l.Lock()
	defer l.Unlock()

	game, err := uc.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := fn(game); err != nil {
		return nil, err
	}
	if err := uc.games.Save(ctx, game); err != nil {
		logger.Error(ctx).Err(err).Str("game_id", gameID).Msg("Failed to save game")
		return nil, fmt.Errorf("failed to save game %s: %w", gameID, err)
	}
	return game, nil
}

// seatOf resolves the actor's seat in a game, by user ID first and by
// email as fallback. Returns -1 when the actor has no seat.
func seatOf(game *domain.Game, actor Actor) int {
	for _, p := range game.Players {
		if p.UserID != 0 && p.UserID == actor.UserID {
			return p.Seat
		}
	}
	for _, p := range game.Players {
		if p.Email != "" && strings.EqualFold(p.Email, actor.Email) {
			return p.Seat
		}
	}
	return -1
}

// isController reports whether the actor may run administrative
// operations on the game: the seat flagged as controller, or the
// system admin.
func (uc *GameUseCase) isController(game *domain.Game, actor Actor) bool {
	if uc.systemAdmin != "" && strings.EqualFold(actor.Email, uc.systemAdmin) {
		return true
	}
	seat := seatOf(game, actor)
	return seat >= 0 && game.Players[seat].IsController
}

// privateView is the game as one seat may see it: everything redacted
// except the seat's own hand.
func privateView(game *domain.Game, seat int) *domain.Game {
	view := game.Redacted()
	if seat >= 0 && seat < len(game.Players) {
		hand := make([]domain.Card, len(game.Players[seat].Hand))
		copy(hand, game.Players[seat].Hand)
		view.Players[seat].Hand = hand
	}
	return view
}

// JoinGame claims the actor's seat in a game. The seat is bound by the
// registry email; joining again after a reconnect is allowed.
func (uc *GameUseCase) JoinGame(ctx context.Context, gameID string, actor Actor) (*domain.Game, error) {
	ctx = logger.WithFields(ctx, map[string]interface{}{
		"game_id": gameID,
		"user_id": actor.UserID,
	})

	var seat int
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		seat = seatOf(g, actor)
		if seat < 0 {
			return fmt.Errorf("%w: no seat for %s in game %s", domain.ErrInvalidMove, actor.Email, gameID)
		}
		return g.SignIn(seat, actor.Name, actor.UserID)
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Join game rejected")
		return nil, err
	}

	logger.Info(ctx).Int("seat", seat).Str("email", actor.Email).Msg("Player joined game")

	uc.broadcaster.SendToUser(actor.UserID, domain.Event{Command: CmdJoinedGame, Data: privateView(game, seat)})
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdPlayerJoined, Data: game.Redacted()})
	return privateView(game, seat), nil
}

// ViewGame returns the redacted game for spectators. No seat needed.
func (uc *GameUseCase) ViewGame(ctx context.Context, gameID string, actor Actor) (*domain.Game, error) {
	game, err := uc.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx).Str("game_id", gameID).Int64("user_id", actor.UserID).Msg("Viewer joined game")
	uc.broadcaster.SendToUser(actor.UserID, domain.Event{Command: CmdViewerJoined, Data: game.Redacted()})
	return game.Redacted(), nil
}

// AvailablePlayers lists the seats nobody claimed yet.
func (uc *GameUseCase) AvailablePlayers(ctx context.Context, gameID string) ([]string, error) {
	game, err := uc.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	free := game.AvailableSeats()
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdFreeSeats, Data: free})
	return free, nil
}

// StartGame activates round 0. Controller only.
func (uc *GameUseCase) StartGame(ctx context.Context, gameID string, actor Actor) (*domain.Game, error) {
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		if !uc.isController(g, actor) {
			return fmt.Errorf("%w: only the game controller can start the game", domain.ErrInvalidMove)
		}
		return g.Start()
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx).Str("game_id", gameID).Msg("Game started")
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdGameStarted, Data: game.Redacted()})
	return game.Redacted(), nil
}

// Shuffle deals the current round. Every player gets their own hand in
// a private push; the group sees the redacted table.
func (uc *GameUseCase) Shuffle(ctx context.Context, gameID string, actor Actor) (*domain.Game, error) {
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		seat := seatOf(g, actor)
		if !uc.isController(g, actor) && seat != g.Dealer {
			return fmt.Errorf("%w: only the dealer can shuffle", domain.ErrInvalidMove)
		}
		return g.Shuffle(uc.newRNG())
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Str("game_id", gameID).Msg("Shuffle rejected")
		return nil, err
	}

	logger.Info(ctx).
		Str("game_id", gameID).
		Int("round", game.CurrentRound).
		Str("trump", game.Trump.Face()).
		Msg("Round dealt")

	// Players who joined receive TWO notifications: their private hand
	// and the redacted group broadcast. The frontend keys on hand_dealt
	// for its own cards.
	for _, p := range game.Players {
		if p.UserID != 0 {
			uc.broadcaster.SendToUser(p.UserID, domain.Event{Command: CmdHandDealt, Data: privateView(game, p.Seat)})
		}
	}
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdShuffled, Data: game.Redacted()})
	return game.Redacted(), nil
}

// PlaceBet records the actor's bet for the active round.
func (uc *GameUseCase) PlaceBet(ctx context.Context, gameID string, actor Actor, amount int) (*domain.Game, error) {
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		seat := seatOf(g, actor)
		if seat < 0 {
			return fmt.Errorf("%w: no seat for %s", domain.ErrInvalidMove, actor.Email)
		}
		return g.PlaceBet(seat, amount)
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Str("game_id", gameID).Int64("user_id", actor.UserID).Msg("Bet rejected")
		return nil, err
	}
	logger.Info(ctx).Str("game_id", gameID).Int64("user_id", actor.UserID).Int("amount", amount).Msg("Bet placed")
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdBetPlaced, Data: game.Redacted()})
	return game.Redacted(), nil
}

// PlayCard moves a card from the actor's hand to the table.
func (uc *GameUseCase) PlayCard(ctx context.Context, gameID string, actor Actor, card domain.Card) (*domain.Game, error) {
	var seat int
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		seat = seatOf(g, actor)
		if seat < 0 {
			return fmt.Errorf("%w: no seat for %s", domain.ErrInvalidMove, actor.Email)
		}
		return g.PlayCard(seat, card)
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Str("game_id", gameID).Int64("user_id", actor.UserID).Msg("Play rejected")
		return nil, err
	}

	logger.Info(ctx).
		Str("game_id", gameID).
		Int64("user_id", actor.UserID).
		Str("card", card.Face()).
		Msg("Card played")

	uc.broadcaster.SendToUser(actor.UserID, domain.Event{Command: CmdPlayedCard, Data: privateView(game, seat)})
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdPlayedCard, Data: game.Redacted()})
	return privateView(game, seat), nil
}

// PlayRandomCard plays the first card of a seat's hand on its behalf.
// Controller convenience for absent players.
func (uc *GameUseCase) PlayRandomCard(ctx context.Context, gameID string, actor Actor, seat int) (*domain.Game, error) {
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		if !uc.isController(g, actor) {
			return fmt.Errorf("%w: only the game controller can play for others", domain.ErrInvalidMove)
		}
		return g.PlayRandomCard(seat)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx).Str("game_id", gameID).Int("seat", seat).Msg("Card played for absent player")
	if p := game.Players[seat]; p.UserID != 0 {
		uc.broadcaster.SendToUser(p.UserID, domain.Event{Command: CmdPlayedCard, Data: privateView(game, seat)})
	}
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdPlayedCard, Data: game.Redacted()})
	return game.Redacted(), nil
}

// ChooseWinner overrides the automatic trick resolution. Controller only.
func (uc *GameUseCase) ChooseWinner(ctx context.Context, gameID string, actor Actor, seat int) (*domain.Game, error) {
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		if !uc.isController(g, actor) {
			return fmt.Errorf("%w: only the game controller can choose a trick winner", domain.ErrInvalidMove)
		}
		return g.ChooseTrickWinner(seat)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx).Str("game_id", gameID).Int("seat", seat).Msg("Trick winner overridden")
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdWinnerChosen, Data: game.Redacted()})
	return game.Redacted(), nil
}

// CleanTable books the completed trick and clears the table.
func (uc *GameUseCase) CleanTable(ctx context.Context, gameID string, actor Actor) (*domain.Game, error) {
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		return g.ClearTrick()
	})
	if err != nil {
		return nil, err
	}
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdTableCleaned, Data: game.Redacted()})
	return game.Redacted(), nil
}

// NextRound scores the finished round and advances the ladder.
// Controller only. When the game turns over it is archived durably and
// the final standing is pushed to the group.
func (uc *GameUseCase) NextRound(ctx context.Context, gameID string, actor Actor) (*domain.Game, error) {
	var wasOver bool
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		if !uc.isController(g, actor) {
			return fmt.Errorf("%w: only the game controller can advance the round", domain.ErrInvalidMove)
		}
		wasOver = g.GameOver
		return g.NextRound()
	})
	if err != nil {
		return nil, err
	}

	if game.GameOver {
		if !wasOver {
			uc.archiveGame(ctx, game)
		}
		logger.Info(ctx).Str("game_id", gameID).Msg("Game over")
		uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdGameOver, Data: game.Redacted()})
		return game.Redacted(), nil
	}

	logger.Info(ctx).Str("game_id", gameID).Int("round", game.CurrentRound).Msg("Advanced to next round")
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdNewRound, Data: game.Redacted()})
	return game.Redacted(), nil
}

// archiveGame writes the terminal game to durable storage. Archival
// failures are logged and do not fail the round transition; the live
// snapshot keeps the state recoverable.
func (uc *GameUseCase) archiveGame(ctx context.Context, game *domain.Game) {
	snapshot, err := json.Marshal(game)
	if err != nil {
		logger.Error(ctx).Err(err).Str("game_id", game.ID).Msg("Failed to marshal game snapshot for archive")
		return
	}

	archive := &domain.GameArchive{
		ArchiveID:     domain.NewArchiveID(),
		GameKey:       game.Key,
		GameID:        game.ID,
		CompetitionID: game.CompetitionID,
		GameOverAt:    game.GameOverAt,
		Snapshot:      string(snapshot),
	}
	scores := make([]domain.PlayerScore, 0, len(game.Players))
	for _, p := range game.Players {
		scores = append(scores, domain.PlayerScore{
			ArchiveID:     archive.ArchiveID,
			Seat:          p.Seat,
			GameID:        game.ID,
			CompetitionID: game.CompetitionID,
			Name:          p.Name,
			Email:         p.Email,
			Score:         p.Score,
			GameOverAt:    game.GameOverAt,
		})
	}

	if err := uc.archive.Archive(ctx, archive, scores); err != nil {
		logger.Error(ctx).
			Err(err).
			Str("game_id", game.ID).
			Str("archive_id", archive.ArchiveID).
			Msg("Failed to archive finished game")
		return
	}
	logger.Info(ctx).
		Str("game_id", game.ID).
		Str("archive_id", archive.ArchiveID).
		Int("players", len(scores)).
		Msg("Finished game archived")
}

// ResetRound rolls the active round back to its pre-deal state.
// Controller only. Recovery path for a stuck table.
func (uc *GameUseCase) ResetRound(ctx context.Context, gameID string, actor Actor) (*domain.Game, error) {
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		if !uc.isController(g, actor) {
			return fmt.Errorf("%w: only the game controller can reset the round", domain.ErrInvalidMove)
		}
		return g.ResetCurrentRound()
	})
	if err != nil {
		return nil, err
	}
	logger.Warn(ctx).Str("game_id", gameID).Int("round", game.CurrentRound).Msg("Round reset")
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdRoundReset, Data: game.Redacted()})
	return game.Redacted(), nil
}

// ResetGame restarts the whole match with the same roster. Controller only.
func (uc *GameUseCase) ResetGame(ctx context.Context, gameID string, actor Actor) (*domain.Game, error) {
	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		if !uc.isController(g, actor) {
			return fmt.Errorf("%w: only the game controller can reset the game", domain.ErrInvalidMove)
		}
		g.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Warn(ctx).Str("game_id", gameID).Msg("Game reset")
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdGameReset, Data: game.Redacted()})
	return game.Redacted(), nil
}

// GetState returns the game as the actor may see it: their private
// view when they hold a seat, the redacted game otherwise.
func (uc *GameUseCase) GetState(ctx context.Context, gameID string, actor Actor) (*domain.Game, error) {
	game, err := uc.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	view := privateView(game, seatOf(game, actor))
	uc.broadcaster.SendToUser(actor.UserID, domain.Event{Command: CmdGameState, Data: view})
	return view, nil
}

// RawState returns the stored game without redaction, hands included.
// Controller or system admin only.
func (uc *GameUseCase) RawState(ctx context.Context, gameID string, actor Actor) (*domain.Game, error) {
	game, err := uc.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !uc.isController(game, actor) {
		return nil, fmt.Errorf("%w: only the game controller can read the raw game state", domain.ErrInvalidMove)
	}
	return game, nil
}

// OverwriteState replaces the stored game wholesale. Controller or
// system admin only. Recovery path for a state no gameplay operation
// can repair. Storage identity and the optimistic version are taken
// from the stored game, so the overwrite cannot move the record to
// another key or bypass the lost-update check.
func (uc *GameUseCase) OverwriteState(ctx context.Context, gameID string, actor Actor, state *domain.Game) (*domain.Game, error) {
	if state == nil || len(state.Players) == 0 || state.NrPlayers != len(state.Players) || len(state.Rounds) == 0 {
		return nil, fmt.Errorf("%w: overwrite state is not a playable game", domain.ErrCorruptState)
	}

	game, err := uc.mutate(ctx, gameID, func(g *domain.Game) error {
		if !uc.isController(g, actor) {
			return fmt.Errorf("%w: only the game controller can overwrite the game state", domain.ErrInvalidMove)
		}
		key, version := g.Key, g.Version
		*g = *state
		g.Key = key
		g.ID = gameID
		g.Version = version
		return nil
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Str("game_id", gameID).Msg("State overwrite rejected")
		return nil, err
	}

	logger.Warn(ctx).Str("game_id", gameID).Str("email", actor.Email).Msg("Game state overwritten")
	uc.broadcaster.BroadcastGame(gameID, domain.Event{Command: CmdGameState, Data: game.Redacted()})
	return game.Redacted(), nil
}

// TopScores returns the all-time leaderboard. Concurrent calls share
// one database query.
func (uc *GameUseCase) TopScores(ctx context.Context) ([]domain.GameScore, error) {
	v, err, _ := uc.sf.Do("top_scores", func() (interface{}, error) {
		return uc.archive.TopScores(ctx, uc.topScoresLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load top scores: %w", err)
	}
	return v.([]domain.GameScore), nil
}

// LiveGames lists the IDs of games in the live store.
func (uc *GameUseCase) LiveGames(ctx context.Context) ([]string, error) {
	return uc.games.Keys(ctx)
}
