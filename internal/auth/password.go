// Package auth implements the credential and session subsystem: bcrypt
// password hashing, JWT issuance, and bearer-token authentication backed by
// the user store.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the work factor the rest of the system assumes.
const DefaultBcryptCost = 10

// HashPassword derives a salted one-way hash of the plaintext. bcrypt embeds
// a fresh random salt on every call, so hashing the same plaintext twice
// yields different digests that both verify.
func HashPassword(plaintext string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext against a stored hash using the salt
// embedded in the hash. It never recomputes with a fresh salt.
func CheckPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
