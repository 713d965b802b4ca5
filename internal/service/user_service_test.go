package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/repository"
	apperrors "github.com/kudzaim/kiosk-commerce/pkg/errors"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

func newTestUserService() (*UserService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	svc := NewUserService(store.Users(), logger.NewLogger("error"))

	return svc, store
}

func staffRequest(email string) CreateUserRequest {
	return CreateUserRequest{
		Name:   "Nyasha Chikore",
		Email:  email,
		Role:   models.RoleStaff,
		Status: models.UserStatusActive,
	}
}

func TestCreateUserReturnsInitialPasswordOnce(t *testing.T) {
	svc, _ := newTestUserService()

	user, initialPassword, err := svc.CreateUser(context.Background(), staffRequest("nyasha@example.com"))
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.True(t, user.IsFirstLogin)
	assert.NotEmpty(t, initialPassword)
	assert.NotEqual(t, initialPassword, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(initialPassword)))
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestUserService()

	_, _, err := svc.CreateUser(context.Background(), staffRequest("nyasha@example.com"))
	require.NoError(t, err)

	_, _, err = svc.CreateUser(context.Background(), staffRequest("nyasha@example.com"))
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.StatusCode(err))
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestUserService()

	missingName := staffRequest("nyasha@example.com")
	missingName.Name = "  "
	_, _, err := svc.CreateUser(context.Background(), missingName)
	assert.Equal(t, 400, apperrors.StatusCode(err))

	badRole := staffRequest("nyasha@example.com")
	badRole.Role = models.Role("Owner")
	_, _, err = svc.CreateUser(context.Background(), badRole)
	assert.Equal(t, 400, apperrors.StatusCode(err))

	badStatus := staffRequest("nyasha@example.com")
	badStatus.Status = models.UserStatus("Suspended")
	_, _, err = svc.CreateUser(context.Background(), badStatus)
	assert.Equal(t, 400, apperrors.StatusCode(err))
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newTestUserService()

	user, _, err := svc.CreateUser(context.Background(), staffRequest("nyasha@example.com"))
	require.NoError(t, err)

	updated, err := svc.UpdateUser(context.Background(), user.ID, CreateUserRequest{
		Name:   "Nyasha C.",
		Email:  "nyasha@example.com",
		Role:   models.RoleAdmin,
		Status: models.UserStatusInactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nyasha C.", updated.Name)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Equal(t, models.UserStatusInactive, updated.Status)
}

func TestUpdateUserRejectsTakenEmail(t *testing.T) {
	svc, _ := newTestUserService()

	_, _, err := svc.CreateUser(context.Background(), staffRequest("first@example.com"))
	require.NoError(t, err)

	second, _, err := svc.CreateUser(context.Background(), staffRequest("second@example.com"))
	require.NoError(t, err)

	_, err = svc.UpdateUser(context.Background(), second.ID, staffRequest("first@example.com"))
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.StatusCode(err))
}

func TestDeleteUserRefusesSelfDeletion(t *testing.T) {
	svc, _ := newTestUserService()

	user, _, err := svc.CreateUser(context.Background(), staffRequest("nyasha@example.com"))
	require.NoError(t, err)

	err = svc.DeleteUser(context.Background(), user.ID, user.ID)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.StatusCode(err))

	still, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, still.ID)
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newTestUserService()

	target, _, err := svc.CreateUser(context.Background(), staffRequest("target@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), "usr-actor", target.ID))

	_, err = svc.GetUser(context.Background(), target.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusCode(err))
}
