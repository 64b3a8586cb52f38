package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	// Low cost keeps the test fast.
	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	require.NoError(t, CheckPassword(hash, "s3cret-pass"))
	require.ErrorIs(t, CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestCheckPasswordRejectsGarbageHash(t *testing.T) {
	require.ErrorIs(t, CheckPassword("not-a-bcrypt-hash", "anything"), ErrInvalidCredentials)
}
