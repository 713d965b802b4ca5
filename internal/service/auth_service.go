package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/repository"
	apperrors "github.com/kudzaim/kiosk-commerce/pkg/errors"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

// invalidCredentials is the single message for both an unknown email and a
// wrong password, so callers cannot probe which emails exist.
const invalidCredentials = "invalid credentials"

// minPasswordLength is the minimum accepted password length
const minPasswordLength = 6

// AuthService checks credentials and issues session tokens for the admin
// area.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration, logger logger.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// LoginResult is the outcome of a successful credential check. Either Token
// is set, or FirstLoginRequired is set and the caller must complete a
// password reset for UserID before a token is issued.
type LoginResult struct {
	Token              string
	ExpiresAt          time.Time
	FirstLoginRequired bool
	UserID             string
	User               *models.User
}

// Claims are the session claims embedded in the JWT
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Login checks, in order: the user exists, the account is active, the role
// may enter the admin area, the password matches, and the first-login flag.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewAuthError(invalidCredentials)
		}
		s.logger.Error("Failed to look up user for login", "error", err)
		return nil, apperrors.NewInternalError("login failed")
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.NewForbiddenError("account is inactive")
	}

	if user.Role != models.RoleAdmin && user.Role != models.RoleStaff {
		return nil, apperrors.NewForbiddenError("not authorized for the admin area")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewAuthError(invalidCredentials)
	}

	if user.IsFirstLogin {
		return &LoginResult{
			FirstLoginRequired: true,
			UserID:             user.ID,
			User:               user,
		}, nil
	}

	token, expiresAt, err := s.issueToken(user)

	if err != nil {
		s.logger.Error("Failed to sign session token", "error", err, "userID", user.ID)
		return nil, apperrors.NewInternalError("login failed")
	}

	s.logger.Info("User logged in", "userID", user.ID, "role", user.Role)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		User:      user,
	}, nil
}

func (s *AuthService) issueToken(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)

	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// ParseToken validates a session token and returns its claims
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, apperrors.NewAuthError("invalid or expired session")
	}

	claims, ok := token.Claims.(*Claims)

	if !ok {
		return nil, apperrors.NewAuthError("invalid or expired session")
	}

	return claims, nil
}

// ResetPassword stores a new password and clears the first-login flag. Used
// both for the forced first-login reset and the admin-initiated one.
func (s *AuthService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)

	if err != nil {
		s.logger.Error("Failed to hash password", "error", err)
		return apperrors.NewInternalError("failed to reset password")
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundError("user not found")
		}
		s.logger.Error("Failed to store password", "error", err, "userID", userID)
		return apperrors.NewInternalError("failed to reset password")
	}

	s.logger.Info("Password reset", "userID", userID)
	return nil
}
