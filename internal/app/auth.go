package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptoLedger/internal/auth"
	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
)

// AuthService handles user registration and login for the API layer.
// The core ledger only ever sees the opaque owner identity this service
// authenticates.
type AuthService struct {
	logger     ports.Logger
	users      ports.UserRepository
	jwt        auth.JWT
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new auth service instance.
func NewAuthService(logger ports.Logger, users ports.UserRepository, jwt auth.JWT, bcryptCost int) (*AuthService, error) {
	if logger == nil || users == nil {
		return nil, fmt.Errorf("missing required dependencies for AuthService")
	}
	if len(jwt.Secret) == 0 {
		return nil, fmt.Errorf("JWT secret must not be empty")
	}
	return &AuthService{
		logger:     logger,
		users:      users,
		jwt:        jwt,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}, nil
}

// Register creates a new user account. The username is normalized to lower
// case; duplicates fail with ports.ErrDuplicateEntry.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ports.ErrInvalidInput)
	}

	hashed, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:       username,
		HashedPassword: hashed,
		CreatedAt:      s.now().UTC(),
	}
	if _, err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ports.ErrDuplicateEntry) {
			return nil, err
		}
		s.logger.Error(ctx, err, "Failed to persist new user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info(ctx, "User registered", map[string]interface{}{"userID": user.ID, "username": user.Username})
	return user, nil
}

// Login authenticates a user and issues a bearer token carrying the user's
// id, username and admin flag. Unknown usernames and wrong passwords fail
// with the same ports.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to look up user for login")
		return "", time.Time{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.CheckPassword(password, user.HashedPassword) {
		return "", time.Time{}, ports.ErrInvalidCredentials
	}

	token, expiresAt, err = s.jwt.Sign(auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		s.logger.Error(ctx, err, "Failed to sign access token")
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info(ctx, "User logged in", map[string]interface{}{"userID": user.ID, "admin": user.IsAdmin})
	return token, expiresAt, nil
}

// validateUsername enforces the account naming rules: 3-50 characters,
// letters, digits, underscores and hyphens only.
func validateUsername(username string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return fmt.Errorf("username must be %d-%d characters: %w", minUsernameLen, maxUsernameLen, ports.ErrInvalidInput)
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return fmt.Errorf("username may only contain letters, numbers, underscores and hyphens: %w", ports.ErrInvalidInput)
		}
	}
	return nil
}
