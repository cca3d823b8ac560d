package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smallledger/internal/core"
)

// UserStore is the persistence the auth service depends on. The SQLite
// repository satisfies it; tests use an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (core.User, error)
	UserByUsername(ctx context.Context, username string) (core.User, error)
	UserByID(ctx context.Context, id int64) (core.User, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) (core.User, error)
}

// Service wires credential verification and token handling together.
type Service struct {
	users  UserStore
	issuer *Issuer
	cost   int
}

func NewService(users UserStore, issuer *Issuer, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &Service{users: users, issuer: issuer, cost: bcryptCost}
}

// Register creates a user with a salted hash of the password. Duplicate
// usernames fail with core.ErrUsernameTaken.
func (s *Service) Register(ctx context.Context, username, password string) (core.User, error) {
	if err := core.ValidateUsername(username); err != nil {
		return core.User{}, err
	}
	if err := core.ValidatePassword(password); err != nil {
		return core.User{}, err
	}

	if _, err := s.users.UserByUsername(ctx, username); err == nil {
		return core.User{}, core.ErrUsernameTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("check username: %w", err)
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return core.User{}, err
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies the credentials and mints a bearer token. Unknown username
// and wrong password both come back as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, core.User, error) {
	if username == "" || password == "" {
		return "", core.User{}, ErrInvalidCredentials
	}

	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", core.User{}, ErrInvalidCredentials
		}
		return "", core.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return "", core.User{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", core.User{}, err
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID, "username", user.Username)
	return token, user, nil
}

// Authenticate validates a bearer token and resolves the acting user from
// storage. The user is loaded fresh so downstream checks see current state,
// and a subject that no longer exists fails with ErrUnknownUser.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (core.User, error) {
	claims, err := s.issuer.Parse(tokenString)
	if err != nil {
		return core.User{}, err
	}

	id, err := claims.UserID()
	if err != nil {
		return core.User{}, err
	}

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, ErrUnknownUser
		}
		return core.User{}, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

// ChangePassword re-hashes with a fresh salt and discards the old hash.
func (s *Service) ChangePassword(ctx context.Context, user core.User, newPassword string) (core.User, error) {
	if err := core.ValidatePassword(newPassword); err != nil {
		return core.User{}, err
	}

	hash, err := HashPassword(newPassword, s.cost)
	if err != nil {
		return core.User{}, err
	}

	updated, err := s.users.UpdateUserPassword(ctx, user.ID, hash)
	if err != nil {
		return core.User{}, fmt.Errorf("update password: %w", err)
	}

	slog.InfoContext(ctx, "Password changed", "user_id", user.ID)
	return updated, nil
}
