package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trading-ledger/internal/config"
	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/repository"
	"github.com/trading-ledger/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	return service.NewAuthService(repository.NewUserRepository(db), config.JWTConfig{
		Secret:      "test-secret",
		ExpireHours: 1,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.Register(&service.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	// Duplicate username and email are rejected
	_, err = svc.Register(&service.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)

	_, err = svc.Register(&service.RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	// Login by username, then by email
	token, err := svc.Login(&service.Credentials{Identifier: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	_, err = svc.Login(&service.Credentials{Identifier: "alice@example.com", Password: "secret123"})
	assert.NoError(t, err)

	_, err = svc.Login(&service.Credentials{Identifier: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(&service.Credentials{Identifier: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.Register(&service.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	token, err := svc.Login(&service.Credentials{Identifier: "alice", Password: "secret123"})
	require.NoError(t, err)

	// The user id travels in the token subject
	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())
	assert.Equal(t, "alice", claims.Name)

	_, err = svc.ValidateToken(token.AccessToken + "x")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	refreshed, err := svc.Refresh(token.AccessToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
