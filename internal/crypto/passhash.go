// Package crypto implements the at-rest protection primitives: the AES-CBC
// cipher envelope, the SHA-256 integrity digest, and bcrypt password hashing.
package crypto

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the cost factor the stored hashes were produced with.
const bcryptCost = 10

// HashPassword returns a bcrypt hash of the password. The salt is generated
// by bcrypt and embedded in the opaque output.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(b), err
}

// CheckPassword verifies password against a bcrypt hash in constant time.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
