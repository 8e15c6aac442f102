package service

import (
	"context"
	"time"
)

// UserService defines the account operations exposed to other modules.
type UserService interface {
	// ValidateToken returns the caller's user ID, username and email.
	ValidateToken(ctx context.Context, token string) (int64, string, string, time.Time, error)
}
