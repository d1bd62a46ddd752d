// Package config loads the service configuration once at startup.
//
// Values are resolved from, in increasing precedence: built-in defaults, an
// optional YAML file, an optional .env file and the process environment.
// Nested keys map to environment variables by upper-casing and replacing dots
// with underscores, e.g. jwt.secret -> JWT_SECRET.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/msomdec/product-catalog/internal/auth/password"
	"github.com/msomdec/product-catalog/internal/auth/token"
	"github.com/msomdec/product-catalog/internal/logger"
)

// MinSecretLength is the minimum HMAC-SHA256 signing key length in bytes.
const MinSecretLength = 32

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds runtime settings for the catalog API.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       token.Config    `mapstructure:"jwt"`
	Password  password.Config `mapstructure:"password"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       logger.Config   `mapstructure:"log"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
	// TrustedProxies lists proxy IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the client IP is always the connection's remote address.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	// DSN is a file path for sqlite and a connection URL for postgres.
	DSN string `mapstructure:"dsn"`
}

// RateLimitConfig bounds auth attempts per client IP.
type RateLimitConfig struct {
	Rate  float64 `mapstructure:"rate"` // tokens per second
	Burst float64 `mapstructure:"burst"`
}

// loaderConfig holds optional file overrides.
type loaderConfig struct {
	configFile string
	envFile    string
}

// Option is a functional option for Load.
type Option func(*loaderConfig)

// WithConfigFile sets an explicit YAML config file path.
func WithConfigFile(path string) Option {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile sets an explicit .env file path. Without it, ./.env is used if present.
func WithEnvFile(path string) Option {
	return func(lc *loaderConfig) { lc.envFile = path }
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "catalog.db")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "product-catalog")
	v.SetDefault("jwt.audience", "product-catalog-client")

	v.SetDefault("password.algorithm", string(password.AlgorithmPBKDF2))
	v.SetDefault("password.iterations", 100000)
	v.SetDefault("password.salt_length", password.MinSaltLength)
	v.SetDefault("password.key_length", password.MinKeyLength)
	v.SetDefault("password.argon2_time", 1)
	v.SetDefault("password.argon2_memory", 64*1024)
	v.SetDefault("password.argon2_threads", 4)

	v.SetDefault("rate_limit.rate", 1.0)
	v.SetDefault("rate_limit.burst", 10.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatJSON)
}

// Load resolves and validates the configuration.
func Load(opts ...Option) (*Config, error) {
	var lc loaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.configFile == "" {
		lc.configFile = os.Getenv("CONFIG_FILE")
	}

	v := viper.New()
	setDefaults(v)

	if lc.configFile != "" {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", lc.configFile, err)
		}
	}

	envFile := lc.envFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if lc.envFile != "" {
		return nil, fmt.Errorf("env file %s: %w", lc.envFile, err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Password.ApplyDefaults()
	cfg.Log.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration. Any error is fatal at startup.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret (JWT_SECRET) is required"))
	} else if len(c.JWT.Secret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("jwt.secret must be at least %d characters for HMAC-SHA256 security", MinSecretLength))
	}
	if c.JWT.Issuer == "" {
		errs = append(errs, errors.New("jwt.issuer is required"))
	}
	if c.JWT.Audience == "" {
		errs = append(errs, errors.New("jwt.audience is required"))
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q (got: %q)", DriverSQLite, DriverPostgres, c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate_limit.burst must be >= 1"))
	}

	if err := c.Password.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("password: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
