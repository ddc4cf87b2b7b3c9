package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input, drops control characters and caps it at
// maxLen runes. Hebrew text is multi-byte, so the cap never counts bytes.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	if maxLen <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= maxLen {
		return cleaned
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}

// OptionalString trims the value and maps blanks to nil.
func OptionalString(input *string) *string {
	if input == nil {
		return nil
	}
	if trimmed := strings.TrimSpace(*input); trimmed != "" {
		return &trimmed
	}
	return nil
}
