package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/config"
)

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeWorkspaceRepo) {
	users := newFakeUserRepo()
	members := newFakeMemberRepo()
	workspaces := newFakeWorkspaceRepo(members)
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: 168}
	return NewAuthService(users, workspaces, cfg), users, workspaces
}

func TestHashPassword_RoundTrip(t *testing.T) {
	encoded, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.Contains(t, encoded, ":")

	assert.True(t, VerifyPassword("hunter2hunter2", encoded))
	assert.False(t, VerifyPassword("wrong", encoded))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	assert.False(t, VerifyPassword("x", ""))
	assert.False(t, VerifyPassword("x", "no-separator"))
	assert.False(t, VerifyPassword("x", "!!!:???"))
}

func TestSignUp_CreatesDefaultWorkspace(t *testing.T) {
	svc, _, workspaces := newAuthFixture()

	user, token, err := svc.SignUp(context.Background(), "Alice", "Alice@Example.com", "long-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", user.Email)

	owned, err := workspaces.FindOwnedByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "my workspace", owned[0].Name)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "Alice", "alice@example.com", "long-password")
	require.NoError(t, err)

	_, _, err = svc.SignUp(ctx, "Imposter", "alice@example.com", "other-password")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
}

func TestSignIn(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "Alice", "alice@example.com", "long-password")
	require.NoError(t, err)

	user, token, err := svc.SignIn(ctx, "alice@example.com", "long-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", user.Email)

	// wrong password and unknown email both come back 401
	_, _, err = svc.SignIn(ctx, "alice@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
	_, _, err = svc.SignIn(ctx, "nobody@example.com", "long-password")
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
}

func TestParseToken_RoundTrip(t *testing.T) {
	svc, _, _ := newAuthFixture()

	user, token, err := svc.SignUp(context.Background(), "Alice", "alice@example.com", "long-password")
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestParseToken_Invalid(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.ParseToken("not-a-token")
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))

	// token signed with a different secret
	users := newFakeUserRepo()
	members := newFakeMemberRepo()
	other := NewAuthService(users, newFakeWorkspaceRepo(members), &config.Config{JWTSecret: "other-secret", JWTExpiry: 168})
	user, token, err := other.SignUp(context.Background(), "Eve", "eve@example.com", "long-password")
	require.NoError(t, err)
	require.NotNil(t, user)

	_, err = svc.ParseToken(token)
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
}

func TestParseToken_Expired(t *testing.T) {
	users := newFakeUserRepo()
	members := newFakeMemberRepo()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: 0}
	svc := NewAuthService(users, newFakeWorkspaceRepo(members), cfg)
	svc.jwtExpiry = -time.Hour

	_, token, err := svc.SignUp(context.Background(), "Alice", "alice@example.com", "long-password")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
}
