package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbelyaev/jobtrack/internal/tokens"
)

func TestAuthService_Register_ThenLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Alice", "alice@x.com", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.NotEqual(t, "pw123", user.PasswordHash)

	claims, err := tokens.ClaimsFromToken(token, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.Email, claims.Email)

	loggedIn, loginToken, err := svc.Login(ctx, "alice@x.com", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, loginToken)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Alice", "  Alice@X.Com ", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", user.Email)

	// Case-insensitive duplicate.
	_, _, err = svc.Register(ctx, "Mallory", "ALICE@x.com", "other")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{name: "empty name", userName: "", email: "a@x.com", password: "pw"},
		{name: "empty email", userName: "A", email: "", password: "pw"},
		{name: "empty password", userName: "A", email: "a@x.com", password: ""},
		{name: "blank name", userName: "   ", email: "a@x.com", password: "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.userName, tt.email, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Login_NoCredentialLeak(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	_, _, wrongPw := svc.Login(ctx, "alice@x.com", "wrong")
	_, _, unknown := svc.Login(ctx, "nobody@x.com", "pw123")

	// Wrong password and unknown email must be indistinguishable.
	require.Error(t, wrongPw)
	require.Error(t, unknown)
	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestAuthService_Me(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	got, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.Me(ctx, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
