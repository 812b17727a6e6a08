// Package crypto implements server-side PIN hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/DnopPondz/web-upload/internal/errs"
)

// scrypt parameters (tuned for server-side hashing). The slow, memory-hard
// derivation together with a per-credential random salt is what keeps the
// small 4-10 digit PIN space out of reach of precomputed dictionaries.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64

	saltBytes = 16
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// CreatePINHash derives a storage-safe hash of pin in the form
// "saltHex:derivedKeyHex" with a fresh random salt.
func CreatePINHash(pin string) (string, error) {
	if pin == "" {
		return "", fmt.Errorf("%w: empty pin", errs.ErrInvalidInput)
	}
	salt, err := RandBytes(saltBytes)
	if err != nil {
		return "", err
	}
	saltHex := hex.EncodeToString(salt)
	key, err := scrypt.Key([]byte(pin), []byte(saltHex), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}
	return saltHex + ":" + hex.EncodeToString(key), nil
}

// VerifyPINHash reports whether pin matches stored. Malformed stored hashes
// and derivation failures report false; verification never returns an error.
func VerifyPINHash(pin, stored string) bool {
	salt, keyHex, found := strings.Cut(stored, ":")
	if !found || salt == "" || keyHex == "" {
		return false
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil {
		return false
	}
	got, err := scrypt.Key([]byte(pin), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false
	}
	if len(got) != len(want) {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}
