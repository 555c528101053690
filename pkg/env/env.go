package env

import "os"

// Get reads key from the process environment. Unset or empty variables
// fall back to the provided default.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
