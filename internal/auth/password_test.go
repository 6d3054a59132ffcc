package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Argon2Params{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashVerify(t *testing.T) {
	h := NewPasswordHasher([]byte("secret"), testParams)

	encoded, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=64,t=1,p=1$"))
	assert.LessOrEqual(t, len(encoded), 128)

	ok, err := h.Verify("pw1", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("pw2", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_SaltDiffers(t *testing.T) {
	h := NewPasswordHasher([]byte("secret"), testParams)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_SecretIsPartOfHash(t *testing.T) {
	encoded, err := NewPasswordHasher([]byte("one"), testParams).Hash("pw")
	require.NoError(t, err)

	ok, err := NewPasswordHasher([]byte("two"), testParams).Verify("pw", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MalformedHash(t *testing.T) {
	h := NewPasswordHasher([]byte("secret"), testParams)

	for _, bad := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=0,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=0$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=100000,p=1$c2FsdA$a2V5",
	} {
		_, err := h.Verify("pw", bad)
		require.ErrorIs(t, err, ErrMalformedHash, bad)
	}
}
