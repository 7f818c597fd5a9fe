package validate

import (
	"strings"
	"unicode"
)

const maxIdentifierLen = 128

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Identifier reports whether value is a usable user, candidate or session id:
// non-blank, at most 128 bytes and free of whitespace and control characters.
func Identifier(value string) bool {
	if !Required(value) || len(value) > maxIdentifierLen {
		return false
	}
	for _, r := range value {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
