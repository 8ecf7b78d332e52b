package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forno/pizza-shop-api/internal/dto"
	"github.com/forno/pizza-shop-api/internal/model"
)

func TestAuthService_SignupAndLogin(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, dto.SignupRequest{
		Name: "Mario", Email: "mario@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.RoleUser, resp.User.Role)

	login, err := svc.Login(ctx, dto.LoginRequest{
		Email: "mario@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupRequest{
		Name: "Mario", Email: "mario@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, dto.SignupRequest{
		Name: "Impostor", Email: "mario@example.com", Password: "different",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_LoginBadCredentials(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Signup(ctx, dto.SignupRequest{
		Name: "Mario", Email: "mario@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "mario@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_TokenClaims(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	resp, err := svc.Signup(context.Background(), dto.SignupRequest{
		Name: "Mario", Email: "mario@example.com", Password: "password123",
	})
	require.NoError(t, err)

	parsed, err := jwt.Parse(resp.Token, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, string(model.RoleUser), claims["role"])
}
