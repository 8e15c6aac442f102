package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jannikanker/OhHellCardGame/internal/modules/account/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.UserID = r.nextID
	r.nextID++
	r.users[user.UserID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID int64) (*domain.User, error) {
	if u, ok := r.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found")
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID int64) error {
	if u, ok := r.users[userID]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (r *fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(context.Background(), username)
	return err == nil, nil
}

func (r *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(context.Background(), email)
	return err == nil, nil
}

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.sessions[session.SessionID] = session
	return nil
}

func (r *fakeSessionRepo) GetBySessionID(_ context.Context, sessionID string) (*domain.Session, error) {
	if s, ok := r.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("session not found")
}

func (r *fakeSessionRepo) Update(_ context.Context, session *domain.Session) error {
	r.sessions[session.SessionID] = session
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, sessionID string) error {
	delete(r.sessions, sessionID)
	return nil
}

func (r *fakeSessionRepo) DeleteByToken(_ context.Context, token string) error {
	for id, s := range r.sessions {
		if s.Token == token {
			delete(r.sessions, id)
		}
	}
	return nil
}

func newTestUseCase() (*AccountUseCase, *fakeUserRepo, *fakeSessionRepo) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	uc := NewAccountUseCase(users, sessions, "test-secret", time.Hour)
	return uc, users, sessions
}

func TestRegisterLowercasesEmail(t *testing.T) {
	uc, users, _ := newTestUseCase()
	ctx := context.Background()

	userID, err := uc.Register(ctx, "alice", "secret123", "Alice@Example.COM")
	require.NoError(t, err)

	user, err := users.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, "", "secret123", "a@example.com")
	assert.Error(t, err)

	_, err = uc.Register(ctx, "alice", "short", "a@example.com")
	assert.Error(t, err)

	_, err = uc.Register(ctx, "alice", "secret123", "a@example.com")
	require.NoError(t, err)

	_, err = uc.Register(ctx, "alice", "secret123", "other@example.com")
	assert.Error(t, err, "duplicate username must be rejected")

	_, err = uc.Register(ctx, "bob", "secret123", "A@Example.com")
	assert.Error(t, err, "duplicate email must be rejected case-insensitively")
}

func TestLoginAndValidateToken(t *testing.T) {
	uc, _, sessions := newTestUseCase()
	ctx := context.Background()

	userID, err := uc.Register(ctx, "alice", "secret123", "alice@example.com")
	require.NoError(t, err)

	loginID, token, refreshToken, expiresAt, err := uc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, userID, loginID)
	assert.NotEmpty(t, refreshToken)
	assert.True(t, expiresAt.After(time.Now()))
	assert.Len(t, sessions.sessions, 1)

	identity, tokenExpiry, err := uc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.WithinDuration(t, expiresAt, tokenExpiry, time.Second)
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, "alice", "secret123", "alice@example.com")
	require.NoError(t, err)

	// Two logins within the same second must not mint the same token;
	// sessions are keyed by token, so a collision would cross-delete.
	_, first, _, _, err := uc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	_, second, _, _, err := uc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, "alice", "secret123", "alice@example.com")
	require.NoError(t, err)

	_, _, _, _, err = uc.Login(ctx, "alice", "wrong-password")
	assert.Error(t, err)

	_, _, _, _, err = uc.Login(ctx, "nobody", "secret123")
	assert.Error(t, err)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	uc, users, _ := newTestUseCase()
	ctx := context.Background()

	userID, err := uc.Register(ctx, "alice", "secret123", "alice@example.com")
	require.NoError(t, err)
	users.users[userID].Status = domain.UserStatusSuspended

	_, _, _, _, err = uc.Login(ctx, "alice", "secret123")
	assert.Error(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	uc, _, _ := newTestUseCase()
	other := NewAccountUseCase(newFakeUserRepo(), newFakeSessionRepo(), "other-secret", time.Hour)
	ctx := context.Background()

	_, err := uc.Register(ctx, "alice", "secret123", "alice@example.com")
	require.NoError(t, err)
	_, token, _, _, err := uc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	_, _, err = other.ValidateToken(ctx, token)
	assert.Error(t, err, "token signed with a different secret must fail")

	_, _, err = uc.ValidateToken(ctx, "not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	users := newFakeUserRepo()
	uc := NewAccountUseCase(users, newFakeSessionRepo(), "test-secret", -time.Minute)
	ctx := context.Background()

	_, err := uc.Register(ctx, "alice", "secret123", "alice@example.com")
	require.NoError(t, err)
	_, token, _, _, err := uc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	_, _, err = uc.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestRefreshTokenIssuesNewAccessToken(t *testing.T) {
	uc, _, sessions := newTestUseCase()
	ctx := context.Background()

	userID, err := uc.Register(ctx, "alice", "secret123", "alice@example.com")
	require.NoError(t, err)
	_, token, refreshToken, _, err := uc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	newToken, sameRefresh, _, err := uc.RefreshToken(ctx, refreshToken)
	require.NoError(t, err)
	assert.Equal(t, refreshToken, sameRefresh)
	assert.NotEqual(t, token, newToken)

	identity, _, err := uc.ValidateToken(ctx, newToken)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)

	_, _, _, err = uc.RefreshToken(ctx, "unknown-refresh")
	assert.Error(t, err)

	// An expired refresh token is rejected and its session removed.
	sessions.sessions[refreshToken].ExpiresAt = time.Now().Add(-time.Minute)
	_, _, _, err = uc.RefreshToken(ctx, refreshToken)
	assert.Error(t, err)
	assert.NotContains(t, sessions.sessions, refreshToken)
}

func TestLogoutDeletesSession(t *testing.T) {
	uc, _, sessions := newTestUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, "alice", "secret123", "alice@example.com")
	require.NoError(t, err)
	_, token, _, _, err := uc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.Len(t, sessions.sessions, 1)

	require.NoError(t, uc.Logout(ctx, token))
	assert.Empty(t, sessions.sessions)
}
