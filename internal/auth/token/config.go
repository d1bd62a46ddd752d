package token

import (
	"errors"
	"time"
)

// Lifetime is the fixed validity window of issued tokens. It is not
// configurable.
const Lifetime = time.Hour

// Config is the signing configuration shared by Issuer and Validator.
// It is built once at startup and passed by value.
type Config struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

// Validate checks the fields both sides of the token exchange depend on.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return ErrMissingSecret
	}
	if c.Issuer == "" {
		return errors.New("token: issuer is required")
	}
	if c.Audience == "" {
		return errors.New("token: audience is required")
	}
	return nil
}
