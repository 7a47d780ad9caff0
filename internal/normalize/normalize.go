// Package normalize implements the Arabic/English text canonicalization and
// tokenization that every matcher and retriever in searchcore builds on. It
// follows the teacher's textnormalize.Heavy shape (NFKC pass, then a
// character-class folding pass, then whitespace collapse) but replaces the
// cross-script transliteration step with the Arabic-specific diacritic,
// hamza, and ta-marbuta folding rules the marketplace domain needs.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Language tags recognized by the core.
const (
	Arabic  = "ar"
	English = "en"
)

// Text is a deterministic, idempotent canonical form of an utterance:
// NFKC-normalized, diacritic-stripped, hamza/alef/ya/ta-marbuta folded,
// definite-article stripped, lowercased, whitespace-collapsed.
type Text string

// Tokens is an ordered sequence of normalized, stopword-filtered fragments.
type Tokens []string

// diacritic reports whether r is one of the combining marks stripped before
// matching: Arabic tonal/vowel marks, superscript alef, small high marks,
// and tatweel (kashida).
func diacritic(r rune) bool {
	switch {
	case r >= 0x0610 && r <= 0x061A:
		return true
	case r >= 0x064B && r <= 0x065F:
		return true
	case r == 0x0670:
		return true
	case r >= 0x06D6 && r <= 0x06ED:
		return true
	case r == 0x0640: // tatweel
		return true
	default:
		return false
	}
}

// foldChar folds a single rune per the hamza/alef, ya, and ta-marbuta rules
// in spec §4.1. Runes with no fold rule pass through unchanged.
func foldChar(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ', 'ٱ':
		return 'ا'
	case 'ى':
		return 'ي'
	case 'ة':
		return 'ه'
	default:
		return r
	}
}

// stripDefiniteArticle removes a leading Arabic definite article ("ال") from
// a single word when at least two characters follow it, leaving short words
// that merely start with those two letters alone (e.g. "ال" itself). The
// strip repeats while that still holds, so a second Normalize pass finds no
// article left to remove.
func stripDefiniteArticle(word string) string {
	const article = "ال"
	for strings.HasPrefix(word, article) && len([]rune(word)) > len([]rune(article))+1 {
		word = strings.TrimPrefix(word, article)
	}
	return word
}

// Normalize canonicalizes text per spec §4.1. The result is pure and
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) Text {
	if text == "" {
		return ""
	}

	s := norm.NFKC.String(text)

	var folded strings.Builder
	folded.Grow(len(s))
	for _, r := range s {
		if diacritic(r) {
			continue
		}
		folded.WriteRune(foldChar(r))
	}

	words := strings.Fields(folded.String())
	for i, w := range words {
		words[i] = strings.ToLower(stripDefiniteArticle(w))
	}

	return Text(strings.Join(words, " "))
}

// taMarbutaFold substitutes ة and ه for a single canonical rune, used by
// TaMarbutaEquivalent to compare two strings modulo that one ambiguity.
func taMarbutaFold(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 'ة' || r == 'ه' {
			return 'ه'
		}
		return r
	}, s)
}

// TaMarbutaEquivalent reports whether a and b are equivalent once both are
// normalized and, additionally, ة/ه are folded to the same rune. Two strings
// that normalize identically are always equivalent; this adds the weaker
// ta-marbuta-insensitive comparison spec §4.1 requires of matchers.
func TaMarbutaEquivalent(a, b string) bool {
	na, nb := string(Normalize(a)), string(Normalize(b))
	if na == nb {
		return true
	}
	return taMarbutaFold(na) == taMarbutaFold(nb)
}

var stopwords = map[string]map[string]bool{
	Arabic: setOf("في", "من", "إلى", "على", "عن", "مع", "هذا", "هذه", "و", "أو", "ال", "لل", "بال"),
	English: setOf(
		"the", "a", "an", "in", "on", "at", "for", "to", "of", "with", "and", "or",
	),
}

// setOf stores each word in normalized form: IsStopword only ever sees
// tokens that already went through Normalize, so membership must compare
// normalized-vs-normalized (إلى→الي, على→علي, أو→او would otherwise never
// match their keys).
func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[string(Normalize(w))] = true
	}
	return m
}

// IsStopword reports whether the already-normalized token tok is a stopword
// in the given language. Unknown languages have no stopwords.
func IsStopword(tok, language string) bool {
	return stopwords[language][tok]
}

// Tokenize splits text on whitespace after normalizing, drops tokens of
// length <= 1 rune, and drops language-specific stopwords. Ordering is
// preserved.
func Tokenize(text string, language string) Tokens {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	fields := strings.Fields(string(normalized))
	out := make(Tokens, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) <= 1 {
			continue
		}
		if IsStopword(f, language) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// MeaningfulTokens filters tok to the subset usable for category-keyword
// matching per spec §4.3.1: anything shorter than 3 runes is dropped
// (stricter than Tokenize's length > 1 rule, since keyword matching needs
// more signal than plain tokenization). It does not remove stopwords itself;
// tokens that come from Tokenize have had them removed already.
func MeaningfulTokens(tokens Tokens) Tokens {
	out := make(Tokens, 0, len(tokens))
	for _, t := range tokens {
		if len([]rune(t)) < 3 {
			continue
		}
		out = append(out, t)
	}
	return out
}


// TaMarbutaVariant returns tok with every ة swapped for ه and vice versa,
// used by the lexical retriever's ILIKE expansion (spec §4.8:
// "expanding each token by adding the ta-marbuta-swapped variant"). Tokens
// with neither rune are returned unchanged.
func TaMarbutaVariant(tok string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'ة':
			return 'ه'
		case 'ه':
			return 'ة'
		default:
			return r
		}
	}, tok)
}
