package session

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxNameLength is the longest name a player may choose, in runes.
const MaxNameLength = 16

// NormalizeName trims and title cases a requested player name. Names are 1 to
// MaxNameLength letters or digits.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return "", fmt.Errorf("%w: %d characters, at most %d allowed", ErrInvalidName, n, MaxNameLength)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", fmt.Errorf("%w: %q is not a letter or digit", ErrInvalidName, r)
		}
	}

	// Casers carry state and are not shared between goroutines.
	return cases.Title(language.English).String(name), nil
}
