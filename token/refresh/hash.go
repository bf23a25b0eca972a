package refresh

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashToken produces the digest stored for a refresh token row. The digest
// covers the entire token: signed tokens for one user share a long common
// prefix, so a truncating hash would let one token verify against another's
// row.
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// TokenMatches compares a raw token against a stored digest in constant time.
func TokenMatches(rawToken, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(rawToken)), []byte(storedHash)) == 1
}
