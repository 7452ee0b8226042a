package ws

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// displayName is what users see: surrounding whitespace trimmed, case kept
func displayName(s string) string { return strings.TrimSpace(s) }

// searchName is the uniqueness key: trimmed and case-folded.
// cases.Caser is stateful, so a fresh one is made per call.
func searchName(s string) string { return cases.Fold().String(strings.TrimSpace(s)) }

func tooShort(s string, min int) bool { return utf8.RuneCountInString(s) < min }

// ValidateUsername trims a participant display name and checks its length
func ValidateUsername(name string, min int) (string, error) {
	name = displayName(name)
	if tooShort(name, min) {
		return "", ErrUsernameTooShort
	}
	return name, nil
}
