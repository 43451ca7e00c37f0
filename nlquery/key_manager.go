package nlquery

import (
	"fmt"
	"os"
	"sync/atomic"
)

// KeyManager rotates through the configured Gemini API keys so a single
// rate-limited key does not take down the fallback path.
type KeyManager struct {
	keys    []string
	current uint32
}

// NewKeyManager loads GEMINI_API_KEY and any numbered spares
// (GEMINI_API_KEY_2..GEMINI_API_KEY_4) from the environment.
func NewKeyManager() *KeyManager {
	keys := make([]string, 0, 4)

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		keys = append(keys, key)
	}
	for i := 2; i <= 4; i++ {
		if key := os.Getenv(fmt.Sprintf("GEMINI_API_KEY_%d", i)); key != "" {
			keys = append(keys, key)
		}
	}

	return &KeyManager{keys: keys}
}

// HasKeys reports whether any API key is configured.
func (km *KeyManager) HasKeys() bool {
	return len(km.keys) > 0
}

// GetNextKey returns the next API key in rotation, or "" when none are
// configured.
func (km *KeyManager) GetNextKey() string {
	if len(km.keys) == 0 {
		return ""
	}
	current := atomic.AddUint32(&km.current, 1)
	return km.keys[(current-1)%uint32(len(km.keys))]
}
