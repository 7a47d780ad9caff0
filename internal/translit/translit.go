// Package translit provides a best-effort ASCII transliteration of
// Arabic-script text, used as a secondary lexical pass for queries typed in
// Latin letters (e.g. "Dimashq" for دمشق). It mirrors the teacher's
// cross-script trigram trick for CJK queries, transplanted onto the
// Arabic/Latin pair.
package translit

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// ASCII transliterates s to lowercase ASCII for use as a secondary trigram
// match key. It is intentionally lossy: diacritics, hamza seats, and
// ta-marbuta all collapse to whatever Unidecode's transliteration table
// picks, which is good enough for a fuzzy fallback pass and nothing more.
func ASCII(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)
	s = unidecode.Unidecode(s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return ""
	}
	return strings.Join(strings.Fields(out), " ")
}

// IsLatinQuery reports whether q contains no Arabic-script runes and at
// least one ASCII letter or digit, i.e. it is a candidate for the
// transliterated fallback pass rather than native Arabic matching.
func IsLatinQuery(q string) bool {
	sawAlnum := false
	for _, r := range q {
		if r >= 0x0600 && r <= 0x06FF {
			return false
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sawAlnum = true
		}
	}
	return sawAlnum
}
