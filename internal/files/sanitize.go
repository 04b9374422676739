package files

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeName turns an arbitrary client filename into a safe storage
// name: Unicode-normalize, strip diacritics, and replace anything
// outside [A-Za-z0-9._-] with underscores.
func SanitizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// StorageKey computes the blob store key for a project attachment.
// The key embeds the generated project id, which is why create has to
// insert the row before uploading.
func StorageKey(projectID, sanitizedName string) string {
	return fmt.Sprintf("projects/%s/%s", projectID, sanitizedName)
}
