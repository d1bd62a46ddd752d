// Package token issues and validates the HS256 bearer tokens handed out
// by the auth endpoints.
//
// A token carries the username as its subject, a random jti, the configured
// issuer and audience, and issued-at/expiry times one Lifetime apart. The server
// keeps no session state; a token is valid until it expires.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/msomdec/product-catalog/internal/domain"
)

var (
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = fmt.Errorf("%w: token signing secret is not set", domain.ErrConfiguration)

	ErrMalformed        = errors.New("token: malformed")
	ErrSignatureInvalid = errors.New("token: signature invalid")
	ErrIssuerMismatch   = errors.New("token: issuer mismatch")
	ErrAudienceMismatch = errors.New("token: audience mismatch")
	ErrExpired          = errors.New("token: expired")
)

// Claims is the payload of an issued token.
type Claims struct {
	jwt.RegisteredClaims
}

// Option customises an Issuer or Validator.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Issuer creates signed tokens.
type Issuer struct {
	cfg Config
	now func() time.Time
}

// NewIssuer creates an Issuer. It fails when the configuration is incomplete.
func NewIssuer(cfg Config, opts ...Option) (*Issuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Issuer{cfg: cfg, now: o.now}, nil
}

// Issue returns a signed token whose subject is username.
func (i *Issuer) Issue(username string) (string, error) {
	if i.cfg.Secret == "" {
		return "", ErrMissingSecret
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validator checks tokens produced by an Issuer with the same Config.
type Validator struct {
	cfg    Config
	parser *jwt.Parser
}

// NewValidator creates a Validator. It fails when the configuration is incomplete.
func NewValidator(cfg Config, opts ...Option) (*Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(o.now),
	)
	return &Validator{cfg: cfg, parser: parser}, nil
}

// Validate verifies signature, issuer, audience and expiry, and returns the
// token's claims. Failures wrap one of the Err* diagnostics in this package;
// callers should still present them to clients as a single rejection.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(v.cfg.Secret), nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

// classify maps jwt parse errors to this package's diagnostics. Signature
// problems win over claim problems so a forged token never reports "expired".
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrIssuerMismatch, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %v", ErrAudienceMismatch, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
