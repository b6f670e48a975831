package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a service name into its canonical form used for
// duplicate detection and slug lookups.
//
// The fold is: NFD decomposition, removal of nonspacing marks, NFC
// recomposition, Unicode simple lower-casing, collapse of whitespace runs
// to a single space, trim. It is locale-independent.
// Example: "  Café  Crème " -> "cafe creme"
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		// Only reachable on invalid transformer state; fall back to the raw input.
		stripped = name
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}
