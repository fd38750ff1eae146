package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonASCII = runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})

// NormalizeFileName turns a user supplied file name into something safe to use
// inside an object key. Accents are stripped from their base letters, everything
// else outside ASCII is dropped and spaces become underscores.
// A name made entirely of non-Latin characters normalizes to an empty string
func NormalizeFileName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.M)), runes.Remove(nonASCII))

	out, _, err := transform.String(t, name)
	if err != nil {
		// The chain only drops runes so this can't really happen, but don't
		// let a broken name through
		return ""
	}

	return strings.ReplaceAll(out, " ", "_")
}
