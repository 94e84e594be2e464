package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// VerifyPassword checks password against a stored credential. bcrypt hashes are
// the normal format; 64-char hex SHA-256 digests from older provisioning are
// still accepted.
func VerifyPassword(stored, password string) bool {
	if isLegacyDigest(stored) {
		sum := sha256.Sum256([]byte(password))
		want, err := hex.DecodeString(strings.ToLower(stored))
		if err != nil {
			return false
		}
		return subtle.ConstantTimeCompare(sum[:], want) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isLegacyDigest(stored string) bool {
	if len(stored) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(stored)
	return err == nil
}

// dummyHash is compared against when the NIK is unknown so both paths cost a bcrypt round.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("vehicle-permit-dummy"), bcrypt.DefaultCost)
