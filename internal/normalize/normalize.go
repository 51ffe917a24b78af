// Package normalize canonicalizes free-text service labels into comparable keys.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ServiceKey returns the canonical key for a service label: lower-case ASCII
// letters and digits joined by single underscores, with no leading or
// trailing underscore. Accents are folded ("Café" -> "cafe"), apostrophes are
// dropped ("Owner's" -> "owners") and every other run of non-alphanumeric
// characters becomes one underscore. ServiceKey is idempotent.
func ServiceKey(label string) string {
	folded := foldAccents(label)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		switch {
		case r == '\'' || r == '’':
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// foldAccents strips combining marks after canonical decomposition. On a
// transform error the input is returned unchanged; non-ASCII runes are then
// treated as separators by ServiceKey.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ServiceKeys normalizes every label and drops empties and duplicates while
// preserving first-seen order.
func ServiceKeys(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	keys := make([]string, 0, len(labels))
	for _, l := range labels {
		k := ServiceKey(l)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// KeySet builds a lookup set from already-normalized keys.
func KeySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// Label renders a service key back into a human-readable label
// ("snow_ice_removal" -> "Snow Ice Removal").
func Label(key string) string {
	// A Caser is stateful, so one is built per call.
	return cases.Title(language.AmericanEnglish).String(strings.ReplaceAll(key, "_", " "))
}
