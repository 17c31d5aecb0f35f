package config

import (
	"os"
	"strings"
)

// GetEnv returns the value of key, "" when unset
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvOrDefault returns the value of key, or fallback when unset or empty
func GetEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// SplitList splits a comma-separated value, dropping blank entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
