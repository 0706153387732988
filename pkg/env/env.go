package env

import "os"

// GetEnv returns the value of the variable or the fallback if it is unset.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
