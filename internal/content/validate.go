// Package content validates and fingerprints source text before any
// generation attempt.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MinLength is the minimum number of characters of source content.
	MinLength = 50
	// MaxLength is the maximum number of characters of source content.
	MaxLength = 10_000
)

var (
	ErrEmpty    = errors.New("content is empty")
	ErrTooShort = fmt.Errorf("content is shorter than %d characters", MinLength)
	ErrTooLong  = fmt.Errorf("content is longer than %d characters", MaxLength)
)

// Validate checks that content meets the length constraints. It is a
// pure function: no side effects, no I/O. Whitespace-only content is
// treated as empty; lengths are counted in runes on the trimmed text.
func Validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmpty
	}
	n := utf8.RuneCountInString(trimmed)
	if n < MinLength {
		return ErrTooShort
	}
	if n > MaxLength {
		return ErrTooLong
	}
	return nil
}

// Fingerprint returns the SHA-256 hex digest of the content text,
// used as a cache/dedup key. The same text always produces the same
// fingerprint.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
