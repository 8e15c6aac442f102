package local

import (
	"context"
	"encoding/json"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"github.com/jannikanker/OhHellCardGame/internal/modules/gateway/ws"
	"github.com/jannikanker/OhHellCardGame/pkg/logger"
)

// GameGroup is the gateway group name for one game's watchers.
func GameGroup(gameID string) string {
	return "game:" + gameID
}

// Broadcaster implements domain.Broadcaster on top of the WebSocket
// manager. Events go out as the standard envelope.
type Broadcaster struct {
	manager *ws.Manager
}

// NewBroadcaster creates a new broadcaster
func NewBroadcaster(manager *ws.Manager) *Broadcaster {
	return &Broadcaster{
		manager: manager,
	}
}

func (b *Broadcaster) encode(event domain.Event) []byte {
	msg, err := json.Marshal(map[string]interface{}{
		"game_code": "boerenbridge",
		"command":   event.Command,
		"data":      event.Data,
	})
	if err != nil {
		logger.Error(context.Background()).
			Err(err).
			Str("command", event.Command).
			Msg("Failed to encode push event")
		return nil
	}
	return msg
}

// BroadcastGame sends an event to everyone watching a game.
func (b *Broadcaster) BroadcastGame(gameID string, event domain.Event) {
	if msg := b.encode(event); msg != nil {
		b.manager.BroadcastGroup(GameGroup(gameID), msg)
	}
}

// SendToUser sends an event to one connected user.
func (b *Broadcaster) SendToUser(userID int64, event domain.Event) {
	if msg := b.encode(event); msg != nil {
		b.manager.SendToUser(userID, msg)
	}
}
