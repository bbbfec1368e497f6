package env

import (
	"os"
)

// Get returns the value of the environment variable, or "" when unset.
func Get(key string) string {
	return os.Getenv(key)
}

// GetOrDefault returns the value of the environment variable. Unset or
// empty variables fall back to def.
func GetOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
