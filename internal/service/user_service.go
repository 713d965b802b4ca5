package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/repository"
	apperrors "github.com/kudzaim/kiosk-commerce/pkg/errors"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

const (
	initialPasswordLength  = 12
	initialPasswordCharset = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// UserService manages admin/staff/customer accounts
type UserService struct {
	users  repository.UserRepository
	logger logger.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository, logger logger.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// CreateUserRequest is the validated admin create-user payload
type CreateUserRequest struct {
	Name   string
	Email  string
	Role   models.Role
	Status models.UserStatus
}

func (r *CreateUserRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" {
		return apperrors.NewValidationError("name and email are required")
	}
	if !models.IsValidRole(r.Role) {
		return apperrors.NewValidationError("unknown role")
	}
	if !models.IsValidUserStatus(r.Status) {
		return apperrors.NewValidationError("unknown status")
	}
	return nil
}

// CreateUser provisions an account with a generated initial password. The
// password is returned exactly once so the admin can hand it over; it is
// not recoverable afterwards.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, string, error) {
	if err := req.validate(); err != nil {
		return nil, "", err
	}

	initialPassword, err := generatePassword(initialPasswordLength)

	if err != nil {
		s.logger.Error("Failed to generate initial password", "error", err)
		return nil, "", apperrors.NewInternalError("failed to create user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)

	if err != nil {
		s.logger.Error("Failed to hash initial password", "error", err)
		return nil, "", apperrors.NewInternalError("failed to create user")
	}

	user := models.NewUser(req.Name, req.Email, string(hash), req.Role, req.Status)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperrors.NewConflictError("email already in use")
		}
		s.logger.Error("Failed to create user", "error", err, "email", req.Email)
		return nil, "", apperrors.NewInternalError("failed to create user")
	}

	s.logger.Info("User created", "userID", user.ID, "role", user.Role)

	return user, initialPassword, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		s.logger.Error("Failed to get user", "error", err, "userID", id)
		return nil, apperrors.NewInternalError("failed to get user")
	}

	return user, nil
}

// ListUsers retrieves all users
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.GetAll(ctx)

	if err != nil {
		s.logger.Error("Failed to list users", "error", err)
		return nil, apperrors.NewInternalError("failed to list users")
	}

	return users, nil
}

// UpdateUser updates name, email, role and status
func (s *UserService) UpdateUser(ctx context.Context, id string, req CreateUserRequest) (*models.User, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, id)

	if err != nil {
		return nil, err
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	user.Status = req.Status

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFoundError("user not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.NewConflictError("email already in use")
		}
		s.logger.Error("Failed to update user", "error", err, "userID", id)
		return nil, apperrors.NewInternalError("failed to update user")
	}

	return user, nil
}

// DeleteUser deletes an account. The authenticated caller can never delete
// their own account.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return apperrors.NewForbiddenError("cannot delete your own account")
	}

	err := s.users.Delete(ctx, id)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundError("user not found")
		}
		s.logger.Error("Failed to delete user", "error", err, "userID", id)
		return apperrors.NewInternalError("failed to delete user")
	}

	s.logger.Info("User deleted", "userID", id, "deletedBy", actorID)
	return nil
}

// generatePassword builds a random initial password from an unambiguous
// character set.
func generatePassword(length int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(initialPasswordCharset)))

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)

		if err != nil {
			return "", err
		}

		b.WriteByte(initialPasswordCharset[n.Int64()])
	}

	return b.String(), nil
}
