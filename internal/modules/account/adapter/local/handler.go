// Package local provides the in-process adapter for the account
// module (monolith mode). It implements service.UserService.
package local

import (
	"context"
	"time"

	"github.com/jannikanker/OhHellCardGame/internal/modules/account/usecase"
	"github.com/jannikanker/OhHellCardGame/pkg/logger"
)

// Handler is the local adapter for the account service.
type Handler struct {
	accountUC *usecase.AccountUseCase
}

// NewHandler creates a new local account handler
func NewHandler(accountUC *usecase.AccountUseCase) *Handler {
	return &Handler{
		accountUC: accountUC,
	}
}

// ValidateToken validates a token and returns the caller identity.
func (h *Handler) ValidateToken(ctx context.Context, token string) (int64, string, string, time.Time, error) {
	identity, expiresAt, err := h.accountUC.ValidateToken(ctx, token)
	if err != nil {
		logger.Debug(ctx).Err(err).Msg("Token validation failed")
		return 0, "", "", time.Time{}, err
	}

	logger.Debug(ctx).
		Int64("user_id", identity.UserID).
		Str("username", identity.Username).
		Msg("Token validated")

	return identity.UserID, identity.Username, identity.Email, expiresAt, nil
}
