package backup

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashManager computes salted digests of backup bodies.
type HashManager struct {
	salt string
}

func NewHashManager(salt string) *HashManager {
	return &HashManager{salt: salt}
}

// GetHash returns the lowercase hex SHA-256 of salt followed by body.
func (h *HashManager) GetHash(body string) string {
	sum := sha256.Sum256([]byte(h.salt + body))
	return hex.EncodeToString(sum[:])
}

// IsHashEqual recomputes the digest of body and compares it with hash.
func (h *HashManager) IsHashEqual(body, hash string) bool {
	expected := h.GetHash(body)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(hash)) == 1
}
