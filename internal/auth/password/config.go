package password

import (
	"fmt"
	"strings"
)

// Algorithm names a supported key-derivation function.
type Algorithm string

const (
	AlgorithmPBKDF2   Algorithm = "pbkdf2"
	AlgorithmArgon2id Algorithm = "argon2id"
)

const (
	// MinIterations is the lowest PBKDF2 iteration count accepted.
	MinIterations = 10000
	// MinSaltLength and MinKeyLength are in bytes.
	MinSaltLength = 16
	MinKeyLength  = 32
)

// Config configures password hashing. Loadable via mapstructure tags.
type Config struct {
	Algorithm     Algorithm `mapstructure:"algorithm"`
	Iterations    int       `mapstructure:"iterations"`
	SaltLength    int       `mapstructure:"salt_length"`
	KeyLength     int       `mapstructure:"key_length"`
	Argon2Time    uint32    `mapstructure:"argon2_time"`
	Argon2Memory  uint32    `mapstructure:"argon2_memory"` // KiB
	Argon2Threads uint8     `mapstructure:"argon2_threads"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmPBKDF2
	}
	if c.Iterations == 0 {
		c.Iterations = 100000
	}
	if c.SaltLength == 0 {
		c.SaltLength = MinSaltLength
	}
	if c.KeyLength == 0 {
		c.KeyLength = MinKeyLength
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 1
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
}

// Validate rejects parameters weaker than the accepted minimums.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmPBKDF2, AlgorithmArgon2id:
	default:
		return fmt.Errorf("unsupported algorithm: %q (use pbkdf2 or argon2id)", c.Algorithm)
	}
	if c.Iterations < MinIterations {
		return fmt.Errorf("iterations must be >= %d (got: %d)", MinIterations, c.Iterations)
	}
	if c.SaltLength < MinSaltLength {
		return fmt.Errorf("salt_length must be >= %d bytes (got: %d)", MinSaltLength, c.SaltLength)
	}
	if c.KeyLength < MinKeyLength {
		return fmt.Errorf("key_length must be >= %d bytes (got: %d)", MinKeyLength, c.KeyLength)
	}
	return nil
}

// NewHasher creates a Hasher from configuration. The returned hasher
// produces hashes with the configured algorithm but verifies hashes of
// either algorithm.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	pbkdf2 := NewPBKDF2Hasher(
		WithIterations(cfg.Iterations),
		WithSaltLength(cfg.SaltLength),
		WithKeyLength(cfg.KeyLength),
	)
	argon := NewArgon2Hasher(
		WithArgon2Time(cfg.Argon2Time),
		WithArgon2Memory(cfg.Argon2Memory),
		WithArgon2Threads(cfg.Argon2Threads),
		WithArgon2SaltLength(cfg.SaltLength),
		WithArgon2KeyLength(cfg.KeyLength),
	)
	if cfg.Algorithm == AlgorithmArgon2id {
		return &multiHasher{primary: argon, pbkdf2: pbkdf2, argon2: argon}
	}
	return &multiHasher{primary: pbkdf2, pbkdf2: pbkdf2, argon2: argon}
}

// multiHasher hashes with one algorithm and verifies by the encoded prefix.
type multiHasher struct {
	primary Hasher
	pbkdf2  *PBKDF2Hasher
	argon2  *Argon2Hasher
}

func (m *multiHasher) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *multiHasher) Verify(password, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, pbkdf2Prefix):
		return m.pbkdf2.Verify(password, encoded)
	case strings.HasPrefix(encoded, argon2Prefix):
		return m.argon2.Verify(password, encoded)
	default:
		return false
	}
}
