package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vagalivre/internal/entities"
	apperrors "vagalivre/internal/errors"
	"vagalivre/internal/repository"
)

func newAuthService() (*AuthService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	return NewAuthService(store.Users(), "test-secret"), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, entities.RegisterRequest{
		Email:    "Ana@Example.com",
		Password: "s3cret",
		FullName: "Ana Souza",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ana@example.com", user.Email, "emails are normalized")
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	token, err := svc.Login(ctx, "ana@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  entities.RegisterRequest
	}{
		{"missing email", entities.RegisterRequest{Password: "x", FullName: "X"}},
		{"missing password", entities.RegisterRequest{Email: "x@example.com", FullName: "X"}},
		{"missing full name", entities.RegisterRequest{Email: "x@example.com", Password: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	req := entities.RegisterRequest{Email: "dup@example.com", Password: "x", FullName: "Dup"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.True(t, apperrors.IsValidation(err))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, entities.RegisterRequest{Email: "ana@example.com", Password: "s3cret", FullName: "Ana"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.True(t, apperrors.IsPermission(err))

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret")
	assert.True(t, apperrors.IsPermission(err))
}

func TestParseTokenRejectsForgery(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, entities.RegisterRequest{Email: "ana@example.com", Password: "s3cret", FullName: "Ana"})
	require.NoError(t, err)
	token, err := svc.Login(ctx, "ana@example.com", "s3cret")
	require.NoError(t, err)

	other := NewAuthService(repository.NewMemoryStore().Users(), "other-secret")
	_, err = other.ParseToken(token)
	assert.True(t, apperrors.IsPermission(err), "tokens signed with another secret must fail")

	_, err = svc.ParseToken("not.a.token")
	assert.True(t, apperrors.IsPermission(err))
}
