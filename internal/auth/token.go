// Package auth issues and verifies the bearer tokens protecting the status
// daemon. Tokens are random, shown once at generation, and stored only as a
// bcrypt hash.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenPrefix marks bridge tokens so leaked strings are recognizable.
	TokenPrefix = "crb_sk_" // #nosec G101 -- prefix pattern, not a credential

	// TokenLength is the random part's length in bytes before hex encoding.
	TokenLength = 32

	// maskedChars is how many characters of the secret MaskToken reveals.
	maskedChars = 8

	bcryptCost = 12
)

// GenerateToken creates a new bearer token. The raw token is returned once
// and never stored; persist only its hash.
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(bytes), nil
}

// HashToken creates a bcrypt hash of a token for storage.
func HashToken(token string) (string, error) {
	secret := strings.TrimPrefix(token, TokenPrefix)
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken checks a presented token against a stored hash.
func VerifyToken(token, hash string) bool {
	secret := strings.TrimPrefix(token, TokenPrefix)
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// IsValidTokenFormat checks the token's shape without touching the hash.
func IsValidTokenFormat(token string) bool {
	if !strings.HasPrefix(token, TokenPrefix) {
		return false
	}
	secret := strings.TrimPrefix(token, TokenPrefix)
	if len(secret) != TokenLength*2 {
		return false
	}
	_, err := hex.DecodeString(secret)
	return err == nil
}

// MaskToken returns a display-safe version of a token.
func MaskToken(token string) string {
	if len(token) < len(TokenPrefix)+maskedChars {
		return "****"
	}
	return token[:len(TokenPrefix)+maskedChars] + "****...****"
}
