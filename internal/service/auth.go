package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/msomdec/product-catalog/internal/auth/password"
	"github.com/msomdec/product-catalog/internal/auth/token"
	"github.com/msomdec/product-catalog/internal/domain"
)

// AuthService handles user registration, login, and bearer token validation.
type AuthService struct {
	users     domain.UserRepository
	hasher    password.Hasher
	issuer    *token.Issuer
	validator *token.Validator

	// decoyHash is verified against when the username is unknown so that
	// both login failure paths cost one KDF evaluation.
	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, hasher password.Hasher, issuer *token.Issuer, validator *token.Validator) *AuthService {
	return &AuthService{
		users:     users,
		hasher:    hasher,
		issuer:    issuer,
		validator: validator,
	}
}

// Register creates a new user account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, username, plain string) (string, error) {
	if isBlank(username) || isBlank(plain) {
		return "", fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	// Fast path; the unique index still decides concurrent registrations.
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return "", domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("get user: %w", err)
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return "", domain.ErrUsernameTaken
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	tok, err := s.issuer.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("user registered")
	return tok, nil
}

// Login verifies credentials and returns a signed token. An unknown username
// and a wrong password both yield domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, plain string) (string, error) {
	if isBlank(username) || isBlank(plain) {
		return "", fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.Verify(plain, s.decoy())
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Verify(plain, user.PasswordHash) {
		return "", domain.ErrUnauthorized
	}

	tok, err := s.issuer.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

// ValidateToken checks a bearer token and returns its claims. The specific
// validation failure stays wrapped for logging.
func (s *AuthService) ValidateToken(tok string) (*token.Claims, error) {
	claims, err := s.validator.Validate(tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	return claims, nil
}

func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		// Hash failure leaves an empty decoy, which Verify rejects immediately.
		s.decoyHash, _ = s.hasher.Hash("decoy-password")
	})
	return s.decoyHash
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
