package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIdentifierLength bounds DNA and system identifiers.
const maxIdentifierLength = 128

// ValidateSystemID validates a catalog system identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No whitespace or control characters
//   - Maximum length of 128 characters
func ValidateSystemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "system id cannot be empty")
	}
	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "system id too long (max %d characters)", maxIdentifierLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "system id contains invalid characters: %q", id)
		}
	}
	return nil
}

// dnaRegex matches module DNA codes such as "W3-END-F-A1".
var dnaRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateDNA validates a single module DNA code.
func ValidateDNA(dna string) error {
	if dna == "" {
		return New(ErrCodeInvalidDNA, "dna cannot be empty")
	}
	if len(dna) > maxIdentifierLength {
		return New(ErrCodeInvalidDNA, "dna too long (max %d characters)", maxIdentifierLength)
	}
	if !dnaRegex.MatchString(dna) {
		return New(ErrCodeInvalidDNA, "invalid dna: %q", dna)
	}
	return nil
}

// ValidateDNASequence validates an ordered house-type DNA sequence.
// The sequence must be non-empty and every entry must pass [ValidateDNA].
func ValidateDNASequence(dnas []string) error {
	if len(dnas) == 0 {
		return New(ErrCodeInvalidInput, "dna sequence cannot be empty")
	}
	for i, d := range dnas {
		if err := ValidateDNA(strings.TrimSpace(d)); err != nil {
			return Wrap(ErrCodeInvalidDNA, err, "dna at index %d", i)
		}
	}
	return nil
}
