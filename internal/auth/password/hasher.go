// Package password hashes and verifies user passwords with a salted,
// deliberately slow key-derivation function.
//
// Encoded hashes are self-describing: the algorithm, its parameters and the
// salt travel with the derived key, so verification needs nothing but the
// stored string.
//
//	$pbkdf2-sha256$i=100000$<salt>$<key>
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// Salt and key are unpadded standard base64.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Prefix = "$pbkdf2-sha256$"
	argon2Prefix = "$argon2id$"
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	// Hash returns an encoded hash of password under a fresh random salt.
	// It fails only when the system entropy source fails.
	Hash(password string) (string, error)

	// Verify reports whether password matches the encoded hash.
	// Malformed input yields false.
	Verify(password, encoded string) bool
}

// randReader is the salt source; replaced in tests.
var randReader io.Reader = rand.Reader

func generateSalt(n int) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := io.ReadFull(randReader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// --- PBKDF2 ---

// PBKDF2Hasher implements Hasher with PBKDF2-HMAC-SHA256.
type PBKDF2Hasher struct {
	iterations int
	saltLen    int
	keyLen     int
}

type PBKDF2Option func(*PBKDF2Hasher)

// WithIterations sets the iteration count. Values below MinIterations are ignored.
func WithIterations(n int) PBKDF2Option {
	return func(h *PBKDF2Hasher) {
		if n >= MinIterations {
			h.iterations = n
		}
	}
}

// WithSaltLength sets the salt size in bytes. Values below MinSaltLength are ignored.
func WithSaltLength(n int) PBKDF2Option {
	return func(h *PBKDF2Hasher) {
		if n >= MinSaltLength {
			h.saltLen = n
		}
	}
}

// WithKeyLength sets the derived key size in bytes. Values below MinKeyLength are ignored.
func WithKeyLength(n int) PBKDF2Option {
	return func(h *PBKDF2Hasher) {
		if n >= MinKeyLength {
			h.keyLen = n
		}
	}
}

// NewPBKDF2Hasher creates a PBKDF2 hasher with 100000 iterations, a
// 16-byte salt and a 32-byte key unless overridden.
func NewPBKDF2Hasher(opts ...PBKDF2Option) *PBKDF2Hasher {
	h := &PBKDF2Hasher{iterations: 100000, saltLen: MinSaltLength, keyLen: MinKeyLength}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	salt, err := generateSalt(h.saltLen)
	if err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, h.iterations, h.keyLen, sha256.New)

	return fmt.Sprintf("%si=%d$%s$%s",
		pbkdf2Prefix,
		h.iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *PBKDF2Hasher) Verify(password, encoded string) bool {
	// "", "pbkdf2-sha256", "i=N", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != "pbkdf2-sha256" {
		return false
	}

	iterStr, ok := strings.CutPrefix(parts[2], "i=")
	if !ok {
		return false
	}
	iterations, err := strconv.Atoi(iterStr)
	if err != nil || iterations < 1 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(expected) == 0 {
		return false
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}

// --- Argon2id ---

// Argon2Hasher implements Hasher with argon2id.
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

type Argon2Option func(*Argon2Hasher)

// WithArgon2Time sets the number of passes (default: 1).
func WithArgon2Time(t uint32) Argon2Option {
	return func(h *Argon2Hasher) { h.time = t }
}

// WithArgon2Memory sets the memory cost in KiB (default: 64*1024).
func WithArgon2Memory(m uint32) Argon2Option {
	return func(h *Argon2Hasher) { h.memory = m }
}

// WithArgon2Threads sets the parallelism (default: 4).
func WithArgon2Threads(p uint8) Argon2Option {
	return func(h *Argon2Hasher) { h.threads = p }
}

func WithArgon2SaltLength(n int) Argon2Option {
	return func(h *Argon2Hasher) {
		if n >= MinSaltLength {
			h.saltLen = n
		}
	}
}

func WithArgon2KeyLength(n int) Argon2Option {
	return func(h *Argon2Hasher) {
		if n >= MinKeyLength {
			h.keyLen = uint32(n)
		}
	}
}

// NewArgon2Hasher creates an argon2id hasher.
func NewArgon2Hasher(opts ...Argon2Option) *Argon2Hasher {
	h := &Argon2Hasher{
		time:    1,
		memory:  64 * 1024,
		threads: 4,
		keyLen:  MinKeyLength,
		saltLen: MinSaltLength,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt, err := generateSalt(h.saltLen)
	if err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix,
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if memory == 0 || time == 0 || threads == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	key := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1
}
