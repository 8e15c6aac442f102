// Package local provides the in-process adapter for the boerenbridge
// module (monolith mode). It implements service.GameService.
package local

import (
	"context"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/usecase"
	"github.com/jannikanker/OhHellCardGame/pkg/service"
)

// Handler is the local adapter for the game service.
type Handler struct {
	gameUC *usecase.GameUseCase
}

// NewHandler creates a new local game handler
func NewHandler(gameUC *usecase.GameUseCase) *Handler {
	return &Handler{
		gameUC: gameUC,
	}
}

func actor(a service.GameActor) usecase.Actor {
	return usecase.Actor{UserID: a.UserID, Email: a.Email, Name: a.Name}
}

func (h *Handler) JoinGame(ctx context.Context, gameID string, a service.GameActor) (*domain.Game, error) {
	return h.gameUC.JoinGame(ctx, gameID, actor(a))
}

func (h *Handler) ViewGame(ctx context.Context, gameID string, a service.GameActor) (*domain.Game, error) {
	return h.gameUC.ViewGame(ctx, gameID, actor(a))
}

func (h *Handler) AvailablePlayers(ctx context.Context, gameID string) ([]string, error) {
	return h.gameUC.AvailablePlayers(ctx, gameID)
}

func (h *Handler) StartGame(ctx context.Context, gameID string, a service.GameActor) (*domain.Game, error) {
	return h.gameUC.StartGame(ctx, gameID, actor(a))
}

func (h *Handler) Shuffle(ctx context.Context, gameID string, a service.GameActor) (*domain.Game, error) {
	return h.gameUC.Shuffle(ctx, gameID, actor(a))
}

func (h *Handler) PlaceBet(ctx context.Context, gameID string, a service.GameActor, amount int) (*domain.Game, error) {
	return h.gameUC.PlaceBet(ctx, gameID, actor(a), amount)
}

func (h *Handler) PlayCard(ctx context.Context, gameID string, a service.GameActor, card domain.Card) (*domain.Game, error) {
	return h.gameUC.PlayCard(ctx, gameID, actor(a), card)
}

func (h *Handler) PlayRandomCard(ctx context.Context, gameID string, a service.GameActor, seat int) (*domain.Game, error) {
	return h.gameUC.PlayRandomCard(ctx, gameID, actor(a), seat)
}

func (h *Handler) ChooseWinner(ctx context.Context, gameID string, a service.GameActor, seat int) (*domain.Game, error) {
	return h.gameUC.ChooseWinner(ctx, gameID, actor(a), seat)
}

func (h *Handler) CleanTable(ctx context.Context, gameID string, a service.GameActor) (*domain.Game, error) {
	return h.gameUC.CleanTable(ctx, gameID, actor(a))
}

func (h *Handler) NextRound(ctx context.Context, gameID string, a service.GameActor) (*domain.Game, error) {
	return h.gameUC.NextRound(ctx, gameID, actor(a))
}

func (h *Handler) ResetRound(ctx context.Context, gameID string, a service.GameActor) (*domain.Game, error) {
	return h.gameUC.ResetRound(ctx, gameID, actor(a))
}

func (h *Handler) ResetGame(ctx context.Context, gameID string, a service.GameActor) (*domain.Game, error) {
	return h.gameUC.ResetGame(ctx, gameID, actor(a))
}

func (h *Handler) GetState(ctx context.Context, gameID string, a service.GameActor) (*domain.Game, error) {
	return h.gameUC.GetState(ctx, gameID, actor(a))
}

func (h *Handler) TopScores(ctx context.Context) ([]domain.GameScore, error) {
	return h.gameUC.TopScores(ctx)
}
