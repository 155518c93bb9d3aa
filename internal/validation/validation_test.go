package validation

import (
	"errors"
	"strings"
	"testing"
)

// TestValidateKey covers accepted and rejected inputs.
func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		maxLen  int
		want    string
		wantErr error
	}{
		{"simple key", "eastern_sea", 64, "eastern_sea", nil},
		{"hyphenated key", "na-vi-river", 64, "na-vi-river", nil},
		{"digits allowed", "site42", 64, "site42", nil},
		{"unicode letters allowed", "ométikaya", 64, "ométikaya", nil},
		{"surrounding whitespace trimmed", "  jake_sully  ", 64, "jake_sully", nil},
		{"empty", "", 64, "", ErrKeyEmpty},
		{"whitespace only", "   ", 64, "", ErrKeyEmpty},
		{"too long", strings.Repeat("a", 65), 64, "", ErrKeyTooLong},
		{"at max length", strings.Repeat("a", 64), 64, strings.Repeat("a", 64), nil},
		{"path traversal", "../etc/passwd", 64, "", ErrKeyInvalidChars},
		{"embedded space", "eastern sea", 64, "", ErrKeyInvalidChars},
		{"shell metachars", "key;rm", 64, "", ErrKeyInvalidChars},
		{"no max length", strings.Repeat("a", 500), 0, strings.Repeat("a", 500), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateKey(tt.input, tt.maxLen)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateKey(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestValidateKey_MultibyteLength verifies that the length limit counts runes,
// not bytes.
func TestValidateKey_MultibyteLength(t *testing.T) {
	key := strings.Repeat("é", 10)
	got, err := ValidateKey(key, 10)
	if err != nil {
		t.Fatalf("ValidateKey() error = %v, want nil for 10 runes with maxLen 10", err)
	}
	if got != key {
		t.Errorf("ValidateKey() = %q, want %q", got, key)
	}
}
