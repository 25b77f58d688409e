package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hashed, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hashed)

	ok, err := VerifyPassword("secret1", hashed)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyWrongPassword(t *testing.T) {
	t.Parallel()

	hashed, err := HashPassword("secret1")
	require.NoError(t, err)

	// A mismatch is a clean false, not an error.
	ok, err := VerifyPassword("secret2", hashed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBrokenHash(t *testing.T) {
	t.Parallel()

	// A corrupt stored hash is a system failure, never "wrong password".
	_, err := VerifyPassword("secret1", "not-a-bcrypt-hash")
	assert.Error(t, err)
}
