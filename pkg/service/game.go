package service

import (
	"context"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
)

// GameActor identifies the authenticated player behind a game request.
type GameActor struct {
	UserID int64
	Email  string
	Name   string
}

// GameService defines the boerenbridge operations exposed to the
// gateway. Every returned game is already redacted for the actor.
type GameService interface {
	JoinGame(ctx context.Context, gameID string, actor GameActor) (*domain.Game, error)
	ViewGame(ctx context.Context, gameID string, actor GameActor) (*domain.Game, error)
	AvailablePlayers(ctx context.Context, gameID string) ([]string, error)
	StartGame(ctx context.Context, gameID string, actor GameActor) (*domain.Game, error)
	Shuffle(ctx context.Context, gameID string, actor GameActor) (*domain.Game, error)
	PlaceBet(ctx context.Context, gameID string, actor GameActor, amount int) (*domain.Game, error)
	PlayCard(ctx context.Context, gameID string, actor GameActor, card domain.Card) (*domain.Game, error)
	PlayRandomCard(ctx context.Context, gameID string, actor GameActor, seat int) (*domain.Game, error)
	ChooseWinner(ctx context.Context, gameID string, actor GameActor, seat int) (*domain.Game, error)
	CleanTable(ctx context.Context, gameID string, actor GameActor) (*domain.Game, error)
	NextRound(ctx context.Context, gameID string, actor GameActor) (*domain.Game, error)
	ResetRound(ctx context.Context, gameID string, actor GameActor) (*domain.Game, error)
	ResetGame(ctx context.Context, gameID string, actor GameActor) (*domain.Game, error)
	GetState(ctx context.Context, gameID string, actor GameActor) (*domain.Game, error)
	TopScores(ctx context.Context) ([]domain.GameScore, error)
}
