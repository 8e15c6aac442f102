// Package usecase implements registration, authentication and session
// logic for player accounts.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/jannikanker/OhHellCardGame/internal/modules/account/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AccountUseCase handles account-related business logic
type AccountUseCase struct {
	userRepo      domain.UserRepository
	sessionRepo   domain.SessionRepository
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewAccountUseCase creates a new account use case
func NewAccountUseCase(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	jwtSecret string,
	tokenDuration time.Duration,
) *AccountUseCase {
	return &AccountUseCase{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
	}
}

// Register registers a new account. The email is stored lowercased;
// registries bind seats to it case-insensitively.
func (uc *AccountUseCase) Register(ctx context.Context, username, password, email string) (int64, error) {
	if username == "" || password == "" || email == "" {
		return 0, fmt.Errorf("username, password, and email are required")
	}
	if len(password) < 6 {
		return 0, fmt.Errorf("password must be at least 6 characters")
	}
	email = strings.ToLower(email)

	exists, err := uc.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return 0, fmt.Errorf("username already exists")
	}

	exists, err = uc.userRepo.EmailExists(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return 0, fmt.Errorf("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Email:        email,
		Status:       domain.UserStatusActive,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return user.UserID, nil
}

// Login authenticates a user and returns a JWT token plus a refresh
// token.
func (uc *AccountUseCase) Login(ctx context.Context, username, password string) (int64, string, string, time.Time, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return 0, "", "", time.Time{}, fmt.Errorf("invalid username or password")
	}
	if !user.IsActive() {
		return 0, "", "", time.Time{}, fmt.Errorf("user account is not active")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return 0, "", "", time.Time{}, fmt.Errorf("invalid username or password")
	}

	token, expiresAt, err := uc.generateToken(user)
	if err != nil {
		return 0, "", "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	refreshToken, err := uc.generateRefreshToken()
	if err != nil {
		return 0, "", "", time.Time{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := &domain.Session{
		SessionID: refreshToken,
		UserID:    user.UserID,
		Token:     token,
		ExpiresAt: expiresAt.Add(24 * time.Hour * 7), // Refresh token valid for 7 days
	}
	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return 0, "", "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	_ = uc.userRepo.UpdateLastLogin(ctx, user.UserID)

	return user.UserID, token, refreshToken, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the caller identity.
func (uc *AccountUseCase) ValidateToken(ctx context.Context, tokenString string) (domain.Identity, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return uc.jwtSecret, nil
	})
	if err != nil {
		return domain.Identity{}, time.Time{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return domain.Identity{}, time.Time{}, fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, time.Time{}, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return domain.Identity{}, time.Time{}, fmt.Errorf("invalid token claims")
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)
	exp, _ := claims["exp"].(float64)

	identity := domain.Identity{
		UserID:   int64(userID),
		Username: username,
		Email:    email,
	}
	return identity, time.Unix(int64(exp), 0), nil
}

// Logout invalidates the sessions bound to a token.
func (uc *AccountUseCase) Logout(ctx context.Context, token string) error {
	return uc.sessionRepo.DeleteByToken(ctx, token)
}

// RefreshToken generates a new access token using a refresh token
func (uc *AccountUseCase) RefreshToken(ctx context.Context, refreshToken string) (string, string, time.Time, error) {
	session, err := uc.sessionRepo.GetBySessionID(ctx, refreshToken)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("invalid refresh token")
	}
	if time.Now().After(session.ExpiresAt) {
		_ = uc.sessionRepo.Delete(ctx, session.SessionID)
		return "", "", time.Time{}, fmt.Errorf("refresh token expired")
	}

	user, err := uc.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("user not found")
	}
	if !user.IsActive() {
		return "", "", time.Time{}, fmt.Errorf("user account is not active")
	}

	newToken, expiresAt, err := uc.generateToken(user)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	session.Token = newToken
	if err := uc.sessionRepo.Update(ctx, session); err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to update session: %w", err)
	}
	return newToken, refreshToken, expiresAt, nil
}

// generateToken generates a JWT token. The email claim carries the
// registry seat binding, so it is always present. The jti claim makes
// every token distinct even within the same second, so sessions keyed
// by token never collide.
func (uc *AccountUseCase) generateToken(user *domain.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(uc.tokenDuration)

	claims := jwt.MapClaims{
		"user_id":  user.UserID,
		"username": user.Username,
		"email":    user.Email,
		"exp":      expiresAt.Unix(),
		"iat":      time.Now().Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// generateRefreshToken generates a random refresh token
func (uc *AccountUseCase) generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
