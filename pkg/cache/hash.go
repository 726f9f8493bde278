package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	return fmt.Sprintf("%s:%s", prefix, HashJSON(parts...))
}

// HashJSON hashes the JSON encoding of parts.
// Values that fail to encode contribute nothing, so callers should only
// pass plain data.
func HashJSON(parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	return Hash(data)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
