package logger

import "strings"

const maskToken = "****"

// Mask redacts a token or key, keeping a 4 character suffix for correlation.
func Mask(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 8 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}
