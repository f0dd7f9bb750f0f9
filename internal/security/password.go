// Package security implements password hashing and signed session values.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SaltLength is the number of letters in a generated password salt.
const SaltLength = 5

const saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Password schemes accepted by NewPasswordHasher.
const (
	SchemeSaltedSHA256 = "salted-sha256"
	SchemeBcrypt       = "bcrypt"
)

// MakeSalt returns n random ASCII letters.
func MakeSalt(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("security: read random salt: %v", err))
	}
	for i, b := range buf {
		buf[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(buf)
}

// HashPassword returns "salt,hex(sha256(username+password+salt))".
// An empty salt is replaced by a fresh one.
func HashPassword(username, password, salt string) string {
	if salt == "" {
		salt = MakeSalt(SaltLength)
	}
	sum := sha256.Sum256([]byte(username + password + salt))
	return salt + "," + hex.EncodeToString(sum[:])
}

// CheckPassword recomputes the salted digest using the salt stored in front
// of the first comma and compares the full strings.
func CheckPassword(username, password, stored string) bool {
	salt, _, ok := strings.Cut(stored, ",")
	if !ok || salt == "" {
		return false
	}
	return HashPassword(username, password, salt) == stored
}

// PasswordHasher hashes new credentials and verifies stored ones.
type PasswordHasher interface {
	Hash(username, password string) (string, error)
	Verify(username, password, stored string) bool
}

// NewPasswordHasher returns the hasher for scheme. An empty scheme selects salted SHA-256.
func NewPasswordHasher(scheme string) (PasswordHasher, error) {
	switch scheme {
	case "", SchemeSaltedSHA256:
		return SaltedSHA256{}, nil
	case SchemeBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// VerifyPassword checks password against a stored hash of either scheme.
func VerifyPassword(username, password, stored string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return CheckPassword(username, password, stored)
}

// SaltedSHA256 produces "salt,digest" hashes.
type SaltedSHA256 struct{}

func (SaltedSHA256) Hash(username, password string) (string, error) {
	return HashPassword(username, password, ""), nil
}

func (SaltedSHA256) Verify(username, password, stored string) bool {
	return VerifyPassword(username, password, stored)
}

// Bcrypt produces bcrypt hashes. The username is not part of the digest.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(_, password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hashed), nil
}

func (Bcrypt) Verify(username, password, stored string) bool {
	return VerifyPassword(username, password, stored)
}
