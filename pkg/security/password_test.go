package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbuyhq/nearbuy-backend/pkg/config"
)

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep the suite fast; production values come from env.
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	encoded, err := HashPassword("Sup3r$ecret", testPasswordConfig())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	ok, err := VerifyPassword("Sup3r$ecret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := HashPassword("Sup3r$ecret", testPasswordConfig())
	require.NoError(t, err)
	second, err := HashPassword("Sup3r$ecret", testPasswordConfig())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := HashPassword("", testPasswordConfig())
	require.Error(t, err)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8,t=1$c2FsdA$aGFzaA$extra",
		"$argon2id$v=19$m=8,t=1,p=1$not-base64!$aGFzaA",
	} {
		_, err := VerifyPassword("anything", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, "hash %q", encoded)
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	ok, _ := CheckPasswordStrength("Sup3r$ecret")
	assert.True(t, ok)

	cases := map[string]string{
		"short":        "S3$a",
		"no uppercase": "sup3r$ecret",
		"no lowercase": "SUP3R$ECRET",
		"no digit":     "Super$ecret",
		"no special":   "Sup3rSecret",
	}
	for name, password := range cases {
		ok, reason := CheckPasswordStrength(password)
		assert.False(t, ok, name)
		assert.NotEmpty(t, reason, name)
	}
}

func TestNewSessionToken(t *testing.T) {
	first, err := NewSessionToken()
	require.NoError(t, err)
	second, err := NewSessionToken()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}
