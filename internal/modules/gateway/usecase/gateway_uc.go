// Package usecase implements the business logic for the gateway module.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"github.com/jannikanker/OhHellCardGame/internal/modules/gateway/ws"
	"github.com/jannikanker/OhHellCardGame/pkg/logger"
	"github.com/jannikanker/OhHellCardGame/pkg/service"
)

const gameCode = "boerenbridge"

// GatewayUseCase routes client messages to the game service and keeps
// the connection's game group membership in sync.
type GatewayUseCase struct {
	gameSvc service.GameService
	manager *ws.Manager
}

// NewGatewayUseCase creates a new gateway use case
func NewGatewayUseCase(gameSvc service.GameService, manager *ws.Manager) *GatewayUseCase {
	return &GatewayUseCase{
		gameSvc: gameSvc,
		manager: manager,
	}
}

// RequestEnvelope defines the standard request structure
type RequestEnvelope struct {
	Game    string          `json:"game"`
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data"`
}

// gamePayload carries the game-scoped fields a command may need.
type gamePayload struct {
	Game string       `json:"game"`
	Bet  *int         `json:"bet,omitempty"`
	Card *domain.Card `json:"card,omitempty"`
	Seat *int         `json:"seat,omitempty"`
}

// HandleMessage dispatches one envelope to the game service.
func (uc *GatewayUseCase) HandleMessage(ctx context.Context, actor service.GameActor, message []byte) ([]byte, error) {
	var req RequestEnvelope
	if err := json.Unmarshal(message, &req); err != nil {
		return nil, fmt.Errorf("invalid message format: %w", err)
	}
	if req.Game == "" || req.Command == "" {
		return nil, fmt.Errorf("missing game or command")
	}

	switch req.Game {
	case gameCode:
		return uc.handleBoerenbridge(ctx, actor, req.Command, req.Data)
	default:
		return nil, fmt.Errorf("unknown game: %s", req.Game)
	}
}

func (uc *GatewayUseCase) handleBoerenbridge(ctx context.Context, actor service.GameActor, command string, data []byte) ([]byte, error) {
	var payload gamePayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			logger.Warn(ctx).
				Err(err).
				Int64("user_id", actor.UserID).
				Str("command", command).
				Msg("Failed to unmarshal command payload")
			return nil, fmt.Errorf("invalid %s payload: %w", command, err)
		}
	}

	if command == "top_scores" {
		scores, err := uc.gameSvc.TopScores(ctx)
		if err != nil {
			return uc.respondError(ctx, actor, command, err)
		}
		return respond(command, scores)
	}

	if payload.Game == "" {
		return nil, fmt.Errorf("missing game id in %s payload", command)
	}
	gameID := payload.Game

	var (
		view *domain.Game
		err  error
	)
	switch command {
	case "join_game":
		view, err = uc.gameSvc.JoinGame(ctx, gameID, actor)
		if err == nil {
			uc.manager.JoinGroup("game:"+gameID, actor.UserID)
		}

	case "view_game":
		view, err = uc.gameSvc.ViewGame(ctx, gameID, actor)
		if err == nil {
			uc.manager.JoinGroup("game:"+gameID, actor.UserID)
		}

	case "leave_game":
		uc.manager.LeaveGroup("game:"+gameID, actor.UserID)
		return respond(command, map[string]any{"game": gameID})

	case "available_players":
		var free []string
		free, err = uc.gameSvc.AvailablePlayers(ctx, gameID)
		if err != nil {
			return uc.respondError(ctx, actor, command, err)
		}
		return respond(command, free)

	case "start_game":
		view, err = uc.gameSvc.StartGame(ctx, gameID, actor)

	case "shuffle":
		view, err = uc.gameSvc.Shuffle(ctx, gameID, actor)

	case "place_bet":
		if payload.Bet == nil {
			return nil, fmt.Errorf("missing bet in place_bet payload")
		}
		view, err = uc.gameSvc.PlaceBet(ctx, gameID, actor, *payload.Bet)

	case "play_card":
		if payload.Card == nil {
			return nil, fmt.Errorf("missing card in play_card payload")
		}
		view, err = uc.gameSvc.PlayCard(ctx, gameID, actor, *payload.Card)

	case "play_random_card":
		if payload.Seat == nil {
			return nil, fmt.Errorf("missing seat in play_random_card payload")
		}
		view, err = uc.gameSvc.PlayRandomCard(ctx, gameID, actor, *payload.Seat)

	case "choose_winner":
		if payload.Seat == nil {
			return nil, fmt.Errorf("missing seat in choose_winner payload")
		}
		view, err = uc.gameSvc.ChooseWinner(ctx, gameID, actor, *payload.Seat)

	case "clean_table":
		view, err = uc.gameSvc.CleanTable(ctx, gameID, actor)

	case "next_round":
		view, err = uc.gameSvc.NextRound(ctx, gameID, actor)

	case "reset_round":
		view, err = uc.gameSvc.ResetRound(ctx, gameID, actor)

	case "reset_game":
		view, err = uc.gameSvc.ResetGame(ctx, gameID, actor)

	case "get_state":
		view, err = uc.gameSvc.GetState(ctx, gameID, actor)

	default:
		logger.Warn(ctx).
			Int64("user_id", actor.UserID).
			Str("command", command).
			Msg("Unknown command")
		return nil, fmt.Errorf("unknown command for %s: %s", gameCode, command)
	}

	if err != nil {
		return uc.respondError(ctx, actor, command, err)
	}
	return respond(command, view)
}

// respondError turns a rejected operation into an error envelope for
// the requesting client. Game rule violations are expected traffic,
// not server failures.
func (uc *GatewayUseCase) respondError(ctx context.Context, actor service.GameActor, command string, err error) ([]byte, error) {
	logger.Warn(ctx).
		Err(err).
		Int64("user_id", actor.UserID).
		Str("command", command).
		Msg("Command rejected")
	return json.Marshal(map[string]interface{}{
		"game_code": gameCode,
		"command":   "error",
		"data": map[string]interface{}{
			"command": command,
			"error":   err.Error(),
		},
	})
}

func respond(command string, data interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"game_code": gameCode,
		"command":   command,
		"data":      data,
	})
}
