package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mbaudry/moustass-web/internal/errs"
)

// KeySize is the required symmetric key length (AES-256).
const KeySize = 32

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// Seal encrypts plaintext with AES-256-CBC under a fresh random IV and returns
// the envelope "hex(iv):hex(ciphertext)". Two calls over the same plaintext
// produce different envelopes, so an envelope is never an identity key.
func Seal(plaintext, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", fmt.Errorf("seal: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	iv, err := RandBytes(aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

// Open decrypts an envelope produced by Seal. Malformed envelopes, wrong key
// lengths, and padding rejections all surface as errs.ErrDecrypt.
func Open(envelope string, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", errs.ErrDecrypt, KeySize)
	}
	ivHex, ctHex, found := strings.Cut(envelope, ":")
	if !found {
		return nil, fmt.Errorf("%w: missing iv separator", errs.ErrDecrypt)
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: bad iv", errs.ErrDecrypt)
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: bad ciphertext", errs.ErrDecrypt)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecrypt, err)
	}
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)
	unpadded, err := pkcs7Unpad(pt, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecrypt, err)
	}
	return unpadded, nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(b))
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}
