package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ideanote/internal/models"
)

// testCost keeps the hashing fast enough for the test suite.
const testCost = bcrypt.MinCost

func TestHash_SaltedAndVerifiable(t *testing.T) {
	hasher := NewBcryptHasherWithCost(testCost)

	password := "correcthorse"
	first, err := hasher.Hash(password)
	require.NoError(t, err)
	second, err := hasher.Hash(password)
	require.NoError(t, err)

	// Fresh random salt per call: same plaintext, different stored values.
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, password, first)
	assert.NotEqual(t, password, second)

	for _, hash := range []string{first, second} {
		match, err := hasher.Compare(password, hash)
		require.NoError(t, err)
		assert.True(t, match)
	}
}

func TestHash_NeverEqualsPlaintext(t *testing.T) {
	hasher := NewBcryptHasherWithCost(testCost)

	for _, password := range []string{"", "alice", "password-with-alice-inside", "correcthorse"} {
		hash, err := hasher.Hash(password)
		require.NoError(t, err)
		assert.NotEqual(t, password, hash)

		match, err := hasher.Compare(password, hash)
		require.NoError(t, err)
		assert.True(t, match)
	}
}

func TestCompare_WrongPassword(t *testing.T) {
	hasher := NewBcryptHasherWithCost(testCost)

	hash, err := hasher.Hash("correcthorse")
	require.NoError(t, err)

	match, err := hasher.Compare("wrong", hash)
	require.NoError(t, err)
	assert.False(t, match)

	match, err = hasher.Compare("", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestCompare_MalformedHash(t *testing.T) {
	hasher := NewBcryptHasherWithCost(testCost)

	for _, corrupt := range []string{"", "not-a-hash", "$2a$xx$garbage", "plaintext-left-behind"} {
		match, err := hasher.Compare("correcthorse", corrupt)
		assert.False(t, match)
		assert.ErrorIs(t, err, models.ErrCredentialFormat, "corrupt hash %q must not look like a mismatch", corrupt)
	}
}

func TestHasher_CostApplied(t *testing.T) {
	hasher := NewBcryptHasherWithCost(6)

	hash, err := hasher.Hash("correcthorse")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 6, cost)
}

func TestHasher_InvalidCostFallsBack(t *testing.T) {
	hasher := NewBcryptHasherWithCost(99)

	hash, err := hasher.Hash("correcthorse")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}
