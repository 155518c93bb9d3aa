package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrKeyEmpty is returned when a key is empty or whitespace-only after trim.
var ErrKeyEmpty = errors.New("key is required")

// ErrKeyTooLong is returned when a key exceeds the maximum length.
var ErrKeyTooLong = errors.New("key too long")

// ErrKeyInvalidChars is returned when a key contains disallowed characters.
var ErrKeyInvalidChars = errors.New("key contains invalid characters")

// ValidateKey trims the input, enforces the maximum length (in runes), and
// restricts to allowed characters: letters (Unicode), digits, underscore,
// hyphen. Registry keys and character page names pass through this before any
// lookup or filename inference.
func ValidateKey(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	n := len(r)
	if n == 0 {
		return "", ErrKeyEmpty
	}
	if maxLen > 0 && n > maxLen {
		return "", ErrKeyTooLong
	}
	for _, c := range r {
		if !isAllowedKeyRune(c) {
			return "", ErrKeyInvalidChars
		}
	}
	return s, nil
}

// isAllowedKeyRune returns true for letters (Unicode), digits, underscore, hyphen.
func isAllowedKeyRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case '_', '-':
		return true
	}
	return false
}
