package identifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a display label into a lowercase URL-safe token.
// "Café Noir & Co." becomes "cafe-noir-co".
func Slugify(label string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, label)
	if err != nil {
		folded = label
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// DeriveCode takes the first four runes of the label, trims them and
// upper-cases the result. Shorter labels yield shorter codes.
func DeriveCode(label string) string {
	r := []rune(label)
	if len(r) > CodeLength {
		r = r[:CodeLength]
	}
	return strings.ToUpper(strings.TrimSpace(string(r)))
}
