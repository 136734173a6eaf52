package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds raw text into its canonical comparable form: lower-case,
// accents stripped, punctuation replaced by spaces (word-internal apostrophes
// dropped), whitespace runs collapsed to a single space, outer whitespace
// trimmed. Total and deterministic; two strings are equivalent for matching
// iff their normalized forms are equal.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	if folded, _, err := transform.String(stripAccents, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case r == '\'' || r == '’':
			// apostrophes are part of the word: o'neill -> oneill
		default:
			// whitespace and punctuation both act as a single separator
			if !space && b.Len() > 0 {
				b.WriteByte(' ')
				space = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}
