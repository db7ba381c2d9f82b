package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"
)

// keyVersion is bumped whenever the cached payload shape changes.
const keyVersion = "v1"

// GenerateKey hashes the JSON encoding of parts into a cache key.
// Struct fields encode in declaration order, so equal inputs give equal keys.
func GenerateKey(parts ...any) (string, error) {
	h := sha256.New()
	h.Write([]byte(keyVersion))
	for i, part := range parts {
		b, err := json.Marshal(part)
		if err != nil {
			return "", fmt.Errorf("encoding key part %d: %w", i, err)
		}
		h.Write([]byte{0})
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
