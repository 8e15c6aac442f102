package domain

import (
	"context"

	"github.com/jannikanker/OhHellCardGame/pkg/service"
)

// GatewayUseCase defines the interface for gateway business logic
type GatewayUseCase interface {
	// HandleMessage handles one message from an authenticated client.
	// The returned bytes, if any, go back to that client only.
	HandleMessage(ctx context.Context, actor service.GameActor, message []byte) ([]byte, error)
}
