package redis

import "strings"

const (
	// KeyPrefix namespaces every navspec key.
	KeyPrefix = "navspec:"

	// DefaultPreferencesKey holds the preference document.
	DefaultPreferencesKey = KeyPrefix + "preferences"
)

// PreferencesKey returns key, defaulting and namespacing it when needed.
// Example: "" -> "navspec:preferences", "alice" -> "navspec:alice"
func PreferencesKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return DefaultPreferencesKey
	}
	if strings.HasPrefix(key, KeyPrefix) {
		return key
	}
	return KeyPrefix + key
}
