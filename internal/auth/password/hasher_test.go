package password

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast parameters keep the suite quick while staying at the accepted minimums.
func newTestPBKDF2() *PBKDF2Hasher {
	return NewPBKDF2Hasher(WithIterations(MinIterations))
}

func newTestArgon2() *Argon2Hasher {
	return NewArgon2Hasher(WithArgon2Memory(1024), WithArgon2Threads(1))
}

func TestPBKDF2_HashAndVerify(t *testing.T) {
	h := newTestPBKDF2()

	encoded, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$pbkdf2-sha256$i=10000$"))
	assert.NotContains(t, encoded, "secret1")
	assert.True(t, h.Verify("secret1", encoded))
	assert.False(t, h.Verify("secret2", encoded))
	assert.False(t, h.Verify("", encoded))
}

func TestPBKDF2_SaltMakesHashesDiffer(t *testing.T) {
	h := newTestPBKDF2()

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestPBKDF2_EncodesParameters(t *testing.T) {
	h := NewPBKDF2Hasher(WithIterations(20000), WithSaltLength(24), WithKeyLength(48))

	encoded, err := h.Hash("pw")
	require.NoError(t, err)

	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 5)
	assert.Equal(t, "i=20000", parts[2])
	assert.Len(t, parts[3], 32) // 24 bytes, unpadded base64
	assert.Len(t, parts[4], 64) // 48 bytes

	// A verifier configured differently still reads the embedded parameters.
	assert.True(t, newTestPBKDF2().Verify("pw", encoded))
}

func TestPBKDF2_IgnoresWeakOptions(t *testing.T) {
	h := NewPBKDF2Hasher(WithIterations(10), WithSaltLength(4), WithKeyLength(8))

	assert.Equal(t, 100000, h.iterations)
	assert.Equal(t, MinSaltLength, h.saltLen)
	assert.Equal(t, MinKeyLength, h.keyLen)
}

func TestPBKDF2_VerifyMalformed(t *testing.T) {
	h := newTestPBKDF2()
	good, err := h.Hash("pw")
	require.NoError(t, err)
	parts := strings.Split(good, "$")

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"plaintext", "pw"},
		{"wrong algorithm", "$pbkdf2-sha1$" + strings.Join(parts[2:], "$")},
		{"missing segment", strings.Join(parts[:4], "$")},
		{"bad iterations", "$pbkdf2-sha256$i=abc$" + parts[3] + "$" + parts[4]},
		{"zero iterations", "$pbkdf2-sha256$i=0$" + parts[3] + "$" + parts[4]},
		{"no iteration key", "$pbkdf2-sha256$10000$" + parts[3] + "$" + parts[4]},
		{"bad salt", "$pbkdf2-sha256$i=10000$!!!$" + parts[4]},
		{"bad key", "$pbkdf2-sha256$i=10000$" + parts[3] + "$!!!"},
		{"empty key", "$pbkdf2-sha256$i=10000$" + parts[3] + "$"},
		{"argon2 hash", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$a2V5"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, h.Verify("pw", tc.encoded))
		})
	}
}

func TestArgon2_HashAndVerify(t *testing.T) {
	h := newTestArgon2()

	encoded, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.True(t, h.Verify("secret1", encoded))
	assert.False(t, h.Verify("secret2", encoded))

	again, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, again)
}

func TestArgon2_VerifyMalformed(t *testing.T) {
	h := newTestArgon2()

	for _, encoded := range []string{
		"",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5",
		"$argon2id$v=19$garbage$c2FsdHNhbHRzYWx0$a2V5",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5",
	} {
		assert.False(t, h.Verify("pw", encoded), encoded)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestHash_EntropyFailure(t *testing.T) {
	orig := randReader
	randReader = failingReader{}
	t.Cleanup(func() { randReader = orig })

	_, err := newTestPBKDF2().Hash("pw")
	assert.ErrorContains(t, err, "generate salt")

	_, err = newTestArgon2().Hash("pw")
	assert.ErrorContains(t, err, "generate salt")
}

func TestHash_UsesSaltSource(t *testing.T) {
	orig := randReader
	randReader = bytes.NewReader(bytes.Repeat([]byte{0x01}, 64))
	t.Cleanup(func() { randReader = orig })

	encoded, err := newTestPBKDF2().Hash("pw")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$AQEBAQEBAQEBAQEBAQEBAQ$")
}

func TestNewHasher_VerifiesEitherAlgorithm(t *testing.T) {
	pb := NewHasher(Config{Algorithm: AlgorithmPBKDF2, Iterations: MinIterations})
	ar := NewHasher(Config{Algorithm: AlgorithmArgon2id, Argon2Memory: 1024, Argon2Threads: 1})

	pbHash, err := pb.Hash("pw")
	require.NoError(t, err)
	arHash, err := ar.Hash("pw")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(pbHash, "$pbkdf2-sha256$"))
	assert.True(t, strings.HasPrefix(arHash, "$argon2id$"))

	assert.True(t, pb.Verify("pw", arHash))
	assert.True(t, ar.Verify("pw", pbHash))
	assert.False(t, pb.Verify("pw", "not-a-hash"))
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, AlgorithmPBKDF2, cfg.Algorithm)
	assert.Equal(t, 100000, cfg.Iterations)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown algorithm", func(c *Config) { c.Algorithm = "md5" }},
		{"few iterations", func(c *Config) { c.Iterations = 9999 }},
		{"short salt", func(c *Config) { c.SaltLength = 8 }},
		{"short key", func(c *Config) { c.KeyLength = 16 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cfg
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
