// Package credentials implements the password hashing and verification
// contract: plaintext goes in exactly once, a salted bcrypt hash comes
// out, and verification never reconstructs the original password.
package credentials

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"ideanote/internal/models"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// PasswordHasher abstracts the hashing scheme so services depend on the
// contract, not on bcrypt.
type PasswordHasher interface {
	// Hash generates a fresh, randomly salted hash of the plaintext.
	Hash(password string) (string, error)

	// Compare checks a candidate plaintext against a stored hash. The
	// comparison re-derives the salt embedded in the hash and runs in
	// constant time relative to hash length. A malformed stored hash is
	// reported as models.ErrCredentialFormat, never as a failed match.
	Compare(password, hash string) (bool, error)
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the default work factor.
func NewBcryptHasher() PasswordHasher {
	return &bcryptHasher{cost: DefaultCost}
}

// NewBcryptHasherWithCost returns a hasher with an explicit work factor.
// Costs outside bcrypt's valid range fall back to the default.
func NewBcryptHasherWithCost(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrHashingFailure, err)
	}
	return string(bytes), nil
}

func (h *bcryptHasher) Compare(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	// Anything else means the stored value is not a parseable bcrypt
	// hash: wrong prefix, truncated, bad cost field.
	return false, fmt.Errorf("%w: %v", models.ErrCredentialFormat, err)
}
