package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/account-service/internal/lib/password"
)

func TestGetHashAndVerify(t *testing.T) {
	hash, err := password.GetHash("supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "supersecret", hash)

	assert.True(t, password.Verify(hash, "supersecret"))
	assert.False(t, password.Verify(hash, "wrongpassword"))
}

func TestVerifyMalformedHash(t *testing.T) {
	// испорченный хэш не должен приводить к панике
	assert.False(t, password.Verify("not-a-bcrypt-hash", "supersecret"))
}

func TestCompareHash(t *testing.T) {
	hash, err := password.GetHash("supersecret")
	require.NoError(t, err)

	assert.NoError(t, password.CompareHash(hash, "supersecret"))
	assert.Error(t, password.CompareHash(hash, "wrongpassword"))
}

func TestGetHashUniqueSalt(t *testing.T) {
	first, err := password.GetHash("supersecret")
	require.NoError(t, err)
	second, err := password.GetHash("supersecret")
	require.NoError(t, err)

	// bcrypt использует случайную соль, хэши не совпадают
	assert.NotEqual(t, first, second)
}
