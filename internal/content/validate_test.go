package content

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty", "", ErrEmpty},
		{"whitespace only", " \t\n  ", ErrEmpty},
		{"too short", "short text", ErrTooShort},
		{"one under minimum", strings.Repeat("a", MinLength-1), ErrTooShort},
		{"exactly minimum", strings.Repeat("a", MinLength), nil},
		{"exactly maximum", strings.Repeat("a", MaxLength), nil},
		{"one over maximum", strings.Repeat("a", MaxLength+1), ErrTooLong},
		{"trimmed before counting", "  " + strings.Repeat("a", MinLength) + "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCountsRunes(t *testing.T) {
	// 50 multi-byte runes passes even though the byte length is higher.
	text := strings.Repeat("ä", MinLength)
	if err := Validate(text); err != nil {
		t.Errorf("Validate(%d runes) = %v, want nil", MinLength, err)
	}

	// Padding with whitespace must not count toward the limit.
	if err := Validate(strings.Repeat("ä", MinLength-1) + "   "); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort for padded short text, got %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("some course content")
	b := Fingerprint("some course content")
	c := Fingerprint("different content")

	if a != b {
		t.Errorf("same text produced different fingerprints: %s vs %s", a, b)
	}
	if a == c {
		t.Error("different texts produced the same fingerprint")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}
