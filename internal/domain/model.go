package domain

import (
	"fmt"
	"strings"
)

// ModelTier describes one speech-to-text model size
type ModelTier struct {
	Key         string
	Description string
}

// ModelTiers lists the supported model keys from smallest/fastest to
// largest/most accurate. The set is fixed.
var ModelTiers = []ModelTier{
	{Key: "tiny", Description: "basic accuracy, very fast"},
	{Key: "base", Description: "good accuracy, fast"},
	{Key: "small", Description: "better accuracy, moderate speed"},
	{Key: "medium", Description: "great accuracy, slower"},
}

// DefaultModel is used when no model key is given
const DefaultModel = "small"

// ModelKeys returns the supported model keys in tier order
func ModelKeys() []string {
	keys := make([]string, len(ModelTiers))
	for i, t := range ModelTiers {
		keys[i] = t.Key
	}
	return keys
}

// IsValidModel reports whether key names a supported tier
func IsValidModel(key string) bool {
	for _, t := range ModelTiers {
		if t.Key == key {
			return true
		}
	}
	return false
}

// ParseModelKey normalizes and validates a model key. An empty key selects
// DefaultModel.
func ParseModelKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return DefaultModel, nil
	}
	if !IsValidModel(key) {
		return "", fmt.Errorf("%w: %q (choose one of %s)", ErrInvalidModel, key, strings.Join(ModelKeys(), ", "))
	}
	return key, nil
}
