package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// ValidateMode checks that the requested input mode is known
func ValidateMode(mode string) error {
	allowed := map[string]bool{
		"text":  true,
		"file":  true,
		"image": true,
	}

	if !allowed[strings.ToLower(mode)] {
		return fmt.Errorf("invalid mode: %s (allowed: text, file, image)", mode)
	}
	return nil
}

var scanIDPattern = regexp.MustCompile(`^(err_)?[a-zA-Z0-9_-]{1,80}$`)

// ValidateScanID validates scan ID format; error records carry an err_ prefix
func ValidateScanID(scanID string) error {
	if scanID == "" {
		return fmt.Errorf("scan ID cannot be empty")
	}
	if !scanIDPattern.MatchString(scanID) {
		return fmt.Errorf("invalid scan ID format")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit clamps a history listing limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 0 // zero means the full history
	}
	if limit > 500 {
		return 500
	}
	return limit
}
