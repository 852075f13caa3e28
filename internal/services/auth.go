package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Marcel-mosha/task-manager/internal/store"
	"github.com/Marcel-mosha/task-manager/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// TokenRepository defines persistence operations for bearer tokens.
type TokenRepository interface {
	GetOrCreate(ctx context.Context, userID int) (string, error)
	GetUserByKey(ctx context.Context, key string) (types.User, error)
}

// AuthService encapsulates registration, login, and token resolution.
type AuthService struct {
	users  UserRepository
	tokens TokenRepository
	policy PasswordPolicy
}

func NewAuthService(users UserRepository, tokens TokenRepository, policy PasswordPolicy) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		policy: policy,
	}
}

// Register creates a new account and returns it together with its bearer
// token. Uniqueness is pre-checked for precise error messages; the store's
// unique constraints still back the check against concurrent duplicates.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (types.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return types.User{}, "", invalidInput("please provide username, email, and password")
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return types.User{}, "", conflict("username already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, "", err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.User{}, "", conflict("email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, "", err
	}

	if err := s.policy.Validate(password, username, email); err != nil {
		return types.User{}, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, "", err
	}

	user, err := s.users.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return types.User{}, "", conflict("username already exists")
		}
		if errors.Is(err, store.ErrDuplicateEmail) {
			return types.User{}, "", conflict("email already exists")
		}
		return types.User{}, "", err
	}

	token, err := s.tokens.GetOrCreate(ctx, user.ID)
	if err != nil {
		return types.User{}, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with their token,
// minting one on first login. Unknown usernames and wrong passwords fail
// identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (types.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return types.User{}, "", invalidInput("please provide both username and password")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, "", ErrInvalidCredentials
		}
		return types.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GetOrCreate(ctx, user.ID)
	if err != nil {
		return types.User{}, "", err
	}
	return user, token, nil
}

// ResolveToken maps an opaque bearer token to its user.
func (s *AuthService) ResolveToken(ctx context.Context, key string) (types.User, error) {
	return s.tokens.GetUserByKey(ctx, key)
}

// GetByID returns the user with the given id.
func (s *AuthService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.users.GetByID(ctx, id)
}
