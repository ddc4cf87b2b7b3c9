// Package env reads the few settings needed before envconfig runs.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}

// OneOf returns the value of key when it case-insensitively matches one of
// allowed, and fallback otherwise.
func OneOf(key, fallback string, allowed ...string) string {
	v := Get(key, "")
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	return fallback
}
