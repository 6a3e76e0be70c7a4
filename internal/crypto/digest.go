package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Digest returns the SHA-256 hex digest of the exact plaintext bytes.
func Digest(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return hex.EncodeToString(sum[:])
}

// VerifyDigest recomputes the digest and compares it against the stored value
// in constant time. A false result means the ciphertext or the stored digest
// was tampered with; detection only, no repair.
func VerifyDigest(plaintext []byte, expected string) bool {
	got := Digest(plaintext)
	if len(got) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
