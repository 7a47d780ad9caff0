// Package matcher implements spec §4.3's DBMatcher: resolving tokens to a
// Category, Location, or TransactionType, and text hints to a leaf
// category. It tries HotCache first, then escalates to the store.
package matcher

import (
	"strings"

	"github.com/soukfinder/searchcore/internal/normalize"
)

// keywordMatches implements the token-vs-keyword rule spec §4.3.1 step 1/2
// share: exact match, ta-marbuta-folded match, or substring containment
// where both strings are at least 4 runes and the shorter is at least 80%
// the length of the longer (so "سيار" doesn't match "سيارة فارهة جدا").
func keywordMatches(keyword, token string) bool {
	k := strings.ToLower(keyword)
	t := strings.ToLower(token)
	if k == t {
		return true
	}
	if normalize.TaMarbutaVariant(k) == t {
		return true
	}

	shorter, longer := k, t
	if len([]rune(k)) > len([]rune(t)) {
		shorter, longer = t, k
	}
	shortLen, longLen := len([]rune(shorter)), len([]rune(longer))
	if shortLen < 4 {
		return false
	}
	if !strings.Contains(longer, shorter) {
		return false
	}
	return float64(shortLen)/float64(longLen) >= 0.8
}

// countMatches returns the number of distinct tokens that match at least
// one keyword in keywords, used for spec §4.3.1 step 2's
// "count of distinct tokens matched" ranking.
func countMatches(keywords []string, tokens []string) int {
	matched := 0
	for _, tok := range tokens {
		for _, kw := range keywords {
			if keywordMatches(kw, tok) {
				matched++
				break
			}
		}
	}
	return matched
}
