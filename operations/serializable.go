package operations

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

// IsSerializable reports whether v survives a JSON round trip into a report.
func IsSerializable(lggr logger.Logger, v any) bool {
	if _, err := json.Marshal(v); err != nil {
		lggr.Errorw("Value is not serializable", "type", fmt.Sprintf("%T", v), "error", err)
		return false
	}

	return true
}

// constructUniqueHashFrom hashes the definition and the JSON form of the input. Hashes are
// cached by the JSON form.
func constructUniqueHashFrom(cache *sync.Map, def Definition, input any) (string, error) {
	inputBytes, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to marshal input: %w", err)
	}

	version := ""
	if def.Version != nil {
		version = def.Version.String()
	}
	key := def.ID + "|" + version + "|" + string(inputBytes)

	if cache != nil {
		if cached, ok := cache.Load(key); ok {
			return cached.(string), nil
		}
	}

	sum := sha256.Sum256([]byte(key))
	hash := hex.EncodeToString(sum[:])
	if cache != nil {
		cache.Store(key, hash)
	}

	return hash, nil
}
