package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/repository"
	apperrors "github.com/kudzaim/kiosk-commerce/pkg/errors"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

func newTestAuthService() (*AuthService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	svc := NewAuthService(store.Users(), "test-secret", time.Hour, logger.NewLogger("error"))

	return svc, store
}

func seedUser(t *testing.T, store *repository.MemoryStore, email, password string, role models.Role, status models.UserStatus, firstLogin bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.NewUser("Test User", email, string(hash), role, status)
	user.IsFirstLogin = firstLogin
	require.NoError(t, store.Users().Create(context.Background(), user))

	return user
}

func TestLoginIssuesSessionToken(t *testing.T) {
	svc, store := newTestAuthService()
	user := seedUser(t, store, "admin@example.com", "s3cret-pass", models.RoleAdmin, models.UserStatusActive, false)

	result, err := svc.Login(context.Background(), "admin@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.False(t, result.FirstLoginRequired)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.UserID)

	claims, err := svc.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginDoesNotRevealWhichCredentialWasWrong(t *testing.T) {
	svc, store := newTestAuthService()
	seedUser(t, store, "admin@example.com", "s3cret-pass", models.RoleAdmin, models.UserStatusActive, false)

	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	require.Error(t, unknownErr)

	_, wrongErr := svc.Login(context.Background(), "admin@example.com", "wrong-pass")
	require.Error(t, wrongErr)

	assert.Equal(t, 401, apperrors.StatusCode(unknownErr))
	assert.Equal(t, 401, apperrors.StatusCode(wrongErr))
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, store := newTestAuthService()
	seedUser(t, store, "gone@example.com", "s3cret-pass", models.RoleAdmin, models.UserStatusInactive, false)

	_, err := svc.Login(context.Background(), "gone@example.com", "s3cret-pass")
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.StatusCode(err))
}

func TestLoginRejectsCustomerRole(t *testing.T) {
	svc, store := newTestAuthService()
	seedUser(t, store, "shopper@example.com", "s3cret-pass", models.RoleCustomer, models.UserStatusActive, false)

	_, err := svc.Login(context.Background(), "shopper@example.com", "s3cret-pass")
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.StatusCode(err))
}

func TestLoginFirstLoginRequiresPasswordReset(t *testing.T) {
	svc, store := newTestAuthService()
	user := seedUser(t, store, "new@example.com", "initial-pass", models.RoleStaff, models.UserStatusActive, true)

	result, err := svc.Login(context.Background(), "new@example.com", "initial-pass")
	require.NoError(t, err)
	assert.True(t, result.FirstLoginRequired)
	assert.Empty(t, result.Token, "no session is issued until the password is reset")
	assert.Equal(t, user.ID, result.UserID)
}

func TestResetPasswordClearsFirstLoginFlag(t *testing.T) {
	svc, store := newTestAuthService()
	user := seedUser(t, store, "new@example.com", "initial-pass", models.RoleStaff, models.UserStatusActive, true)

	require.NoError(t, svc.ResetPassword(context.Background(), user.ID, "fresh-password"))

	result, err := svc.Login(context.Background(), "new@example.com", "fresh-password")
	require.NoError(t, err)
	assert.False(t, result.FirstLoginRequired)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(context.Background(), "new@example.com", "initial-pass")
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.StatusCode(err))
}

func TestResetPasswordEnforcesMinimumLength(t *testing.T) {
	svc, store := newTestAuthService()
	user := seedUser(t, store, "new@example.com", "initial-pass", models.RoleStaff, models.UserStatusActive, true)

	err := svc.ResetPassword(context.Background(), user.ID, "short")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
}

func TestResetPasswordUnknownUser(t *testing.T) {
	svc, _ := newTestAuthService()

	err := svc.ResetPassword(context.Background(), "usr-missing", "fresh-password")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusCode(err))
}

func TestParseTokenRejectsTampering(t *testing.T) {
	svc, store := newTestAuthService()
	seedUser(t, store, "admin@example.com", "s3cret-pass", models.RoleAdmin, models.UserStatusActive, false)

	result, err := svc.Login(context.Background(), "admin@example.com", "s3cret-pass")
	require.NoError(t, err)

	other := NewAuthService(store.Users(), "different-secret", time.Hour, logger.NewLogger("error"))

	_, err = other.ParseToken(result.Token)
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.StatusCode(err))

	_, err = svc.ParseToken(result.Token + "x")
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.StatusCode(err))
}
