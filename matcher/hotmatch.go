package matcher

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/hotcache"
	"github.com/soukfinder/searchcore/internal/translit"
)

// jaroWinklerFuzzyThreshold is the Jaro-Winkler score above which two
// in-memory strings are treated as a fuzzy keyword hit. SQL trigram
// similarity is unavailable for HotCache's snapshot data, so
// antzucaro/matchr fills that role the way glyphoxa uses it to rank
// in-memory transcript candidates.
const jaroWinklerFuzzyThreshold = 0.88

// hotCategoryMatch implements spec §4.3.1 step 1: scan the snapshot's
// ordered category list for the first category whose keyword array hits a
// meaningful token via the exact/ta-marbuta-folded/substring rule
// (keywordMatches) — no fuzzy generalization here, that rule is a closed,
// precisely-specified predicate. Jaro-Winkler fuzziness is reserved for the
// distinct Latin-transliteration fallback strategies below.
func hotCategoryMatch(snap *hotcache.Snapshot, tokens []string, language string) (*catalog.CategoryRef, bool) {
	if snap == nil {
		return nil, false
	}
	for _, c := range snap.Categories {
		keywords := c.Keywords(language)
		for _, tok := range tokens {
			for _, kw := range keywords {
				if keywordMatches(kw, tok) {
					return &catalog.CategoryRef{
						ID:         c.ID,
						Slug:       c.Slug,
						Name:       c.Name(language),
						Level:      c.Level,
						Confidence: 0.95,
					}, true
				}
			}
		}
	}
	return nil, false
}

// hotLocationMatch implements spec §4.3.2 step 1: any token appears in (or
// contains) a city or province name.
func hotLocationMatch(snap *hotcache.Snapshot, tokens []string, language string) (*catalog.LocationRef, bool) {
	if snap == nil {
		return nil, false
	}
	for _, city := range snap.Cities {
		name := city.NameAr
		province := city.ProvinceAr
		if language != "ar" {
			name, province = city.NameEn, city.ProvinceEn
		}
		for _, tok := range tokens {
			if containsEitherWay(name, tok) || containsEitherWay(province, tok) {
				return &catalog.LocationRef{
					ID:         city.ID,
					Kind:       catalog.LocationCity,
					Name:       name,
					Confidence: 0.95,
				}, true
			}
		}
	}
	return nil, false
}

// hotCategoryMatchTranslit is the Latin-script fallback for hotCategoryMatch:
// a query typed in Latin letters ("sayara" for سيارة) never hits the
// Arabic-keyword strategies above, so its raw (already-lowercased-by-caller)
// tokens are fuzzy-compared against the ASCII transliteration of each
// category's Arabic keywords instead.
func hotCategoryMatchTranslit(snap *hotcache.Snapshot, tokens []string) (*catalog.CategoryRef, bool) {
	if snap == nil {
		return nil, false
	}
	for _, c := range snap.Categories {
		for _, kw := range c.Keywords("ar") {
			asciiKw := translit.ASCII(kw)
			if asciiKw == "" {
				continue
			}
			for _, tok := range tokens {
				if matchr.JaroWinkler(asciiKw, strings.ToLower(tok), false) >= jaroWinklerFuzzyThreshold {
					return &catalog.CategoryRef{
						ID:         c.ID,
						Slug:       c.Slug,
						Name:       c.Name("en"),
						Level:      c.Level,
						Confidence: 0.60,
					}, true
				}
			}
		}
	}
	return nil, false
}

// hotLocationMatchTranslit is hotLocationMatch's Latin-script counterpart:
// city/province Arabic names transliterated to ASCII, fuzzy-compared
// against the raw query tokens.
func hotLocationMatchTranslit(snap *hotcache.Snapshot, tokens []string) (*catalog.LocationRef, bool) {
	if snap == nil {
		return nil, false
	}
	for _, city := range snap.Cities {
		asciiName := translit.ASCII(city.NameAr)
		asciiProvince := translit.ASCII(city.ProvinceAr)
		for _, tok := range tokens {
			lt := strings.ToLower(tok)
			if (asciiName != "" && matchr.JaroWinkler(asciiName, lt, false) >= jaroWinklerFuzzyThreshold) ||
				(asciiProvince != "" && matchr.JaroWinkler(asciiProvince, lt, false) >= jaroWinklerFuzzyThreshold) {
				return &catalog.LocationRef{
					ID:         city.ID,
					Kind:       catalog.LocationCity,
					Name:       city.NameEn,
					Confidence: 0.60,
				}, true
			}
		}
	}
	return nil, false
}

func containsEitherWay(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
