// Package attributes implements spec §4.4's AttributeExtractor: pure
// regex-based extraction of numeric ranges/values (price, area, rooms,
// year, mileage, condition) and qualitative hints. Ranges are always tried
// before single values for the same attribute, so "من 2 الى 3 مليون" never
// also yields a spurious single-price match.
package attributes

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/soukfinder/searchcore/catalog"
)

var commaStripper = strings.NewReplacer(",", "", "،", "")

func stripCommas(s string) string {
	return commaStripper.Replace(s)
}

var millionMarker = regexp.MustCompile(`(?i)مليون|million`)

// scaleIfMillion multiplies an already-parsed value by 10^6 when a million
// marker appears in the surrounding text, and returns it unchanged otherwise.
func scaleIfMillion(value float64, context string) float64 {
	if millionMarker.MatchString(context) {
		return value * 1_000_000
	}
	return value
}

var (
	rangeConnector = regexp.MustCompile(`(?i)(?:من|from|between|بين)\s*([\d.,]+)\s*(?:الى|إلى|to|and|و)\s*([\d.,]+)`)
	bareRange      = regexp.MustCompile(`([\d.,]+)\s*-\s*([\d.,]+)`)

	currencyTerminated = regexp.MustCompile(`(?i)([\d.,]+)\s*(?:مليون\s*)?(?:ليرة|دولار|ل\.س|syp|usd|\$)`)
	pricePrefixed      = regexp.MustCompile(`(?i)(?:بسعر|سعر|price)\s*([\d.,]+)(?:\s*مليون)?`)

	areaUnit  = regexp.MustCompile(`(?i)([\d.,]+)\s*(?:م٢|متر مربع|sqm|sq\.?\s*m|m2|m²)`)
	dunumUnit = regexp.MustCompile(`(?i)([\d.,]+)\s*(?:دونم|هكتار|dunum|hectare)`)

	roomsDigit = regexp.MustCompile(`(?i)([\d]+)\s*(?:غرف|غرفة|rooms?|bedrooms?)`)

	yearWithMarker = regexp.MustCompile(`(?i)(?:موديل|model|سنة|year)\s*(\d{4})`)
	bareYear       = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

	mileageUnit = regexp.MustCompile(`(?i)([\d.,]+)\s*(?:كم|كيلومتر|km|kilometers?)`)

	conditionNew  = regexp.MustCompile(`(?i)جديد(?:ة)?|\bnew\b`)
	conditionUsed = regexp.MustCompile(`(?i)مستعمل(?:ة)?|مستخدم(?:ة)?|\bused\b`)

	hintCheap      = regexp.MustCompile(`(?i)رخيص(?:ة)?|\bcheap\b`)
	hintExpensive  = regexp.MustCompile(`(?i)غالي(?:ة)?|\bexpensive\b`)
)

var roomWords = map[string]int{
	"غرفة واحدة": 1, "غرفة": 1, "one room": 1,
	"غرفتين": 2, "two rooms": 2,
	"ثلاث غرف": 3, "three rooms": 3,
	"اربع غرف": 4, "أربع غرف": 4, "four rooms": 4,
	"خمس غرف": 5, "five rooms": 5,
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(stripCommas(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Extract implements spec §4.4 over the raw (un-normalized) text, returning
// a map keyed by attribute slug.
func Extract(text string) map[string]catalog.AttributeValue {
	clean := stripCommas(text)
	out := map[string]catalog.AttributeValue{}

	if v, ok := extractPriceRange(clean); ok {
		out[catalog.AttrSlugPrice] = v
	} else if v, ok := extractPriceSingle(clean); ok {
		out[catalog.AttrSlugPrice] = v
	}

	if v, ok := extractAreaRange(clean); ok {
		out[catalog.AttrSlugArea] = v
	} else if v, ok := extractAreaSingle(clean); ok {
		out[catalog.AttrSlugArea] = v
	}

	if v, ok := extractRooms(clean); ok {
		out[catalog.AttrSlugRooms] = v
	}
	if v, ok := extractYear(clean); ok {
		out[catalog.AttrSlugYear] = v
	}
	if v, ok := extractMileage(clean); ok {
		out[catalog.AttrSlugMileage] = v
	}
	if v, ok := extractCondition(clean); ok {
		out[catalog.AttrSlugCondition] = v
	}
	if _, hasPrice := out[catalog.AttrSlugPrice]; !hasPrice {
		if v, ok := extractPriceHint(clean); ok {
			out[catalog.AttrSlugPrice] = v
		}
	}

	return out
}

func extractPriceRange(text string) (catalog.AttributeValue, bool) {
	m := rangeConnector.FindStringSubmatch(text)
	if m == nil {
		m = bareRange.FindStringSubmatch(text)
	}
	if m == nil {
		return catalog.AttributeValue{}, false
	}
	minV, ok1 := parseFloat(m[1])
	maxV, ok2 := parseFloat(m[2])
	if !ok1 || !ok2 {
		return catalog.AttributeValue{}, false
	}
	minV = scaleIfMillion(minV, text)
	maxV = scaleIfMillion(maxV, text)
	return catalog.AttributeValue{Kind: catalog.AttrRange, Min: &minV, Max: &maxV}, true
}

func extractPriceSingle(text string) (catalog.AttributeValue, bool) {
	if m := currencyTerminated.FindStringSubmatch(text); m != nil {
		v, ok := parseFloat(m[1])
		if !ok {
			return catalog.AttributeValue{}, false
		}
		return catalog.AttributeValue{Kind: catalog.AttrNumber, Value: scaleIfMillion(v, m[0])}, true
	}
	if m := pricePrefixed.FindStringSubmatch(text); m != nil {
		v, ok := parseFloat(m[1])
		if !ok {
			return catalog.AttributeValue{}, false
		}
		return catalog.AttributeValue{Kind: catalog.AttrNumber, Value: scaleIfMillion(v, m[0])}, true
	}
	return catalog.AttributeValue{}, false
}

func extractAreaRange(text string) (catalog.AttributeValue, bool) {
	idx := areaUnit.FindStringIndex(text)
	if idx == nil {
		return catalog.AttributeValue{}, false
	}
	window := text[:idx[1]]
	m := rangeConnector.FindStringSubmatch(window)
	if m == nil {
		m = bareRange.FindStringSubmatch(window)
	}
	if m == nil {
		return catalog.AttributeValue{}, false
	}
	minV, ok1 := parseFloat(m[1])
	maxV, ok2 := parseFloat(m[2])
	if !ok1 || !ok2 {
		return catalog.AttributeValue{}, false
	}
	return catalog.AttributeValue{Kind: catalog.AttrRange, Min: &minV, Max: &maxV}, true
}

func extractAreaSingle(text string) (catalog.AttributeValue, bool) {
	if m := areaUnit.FindStringSubmatch(text); m != nil {
		if v, ok := parseFloat(m[1]); ok {
			return catalog.AttributeValue{Kind: catalog.AttrNumber, Value: v}, true
		}
	}
	if m := dunumUnit.FindStringSubmatch(text); m != nil {
		if v, ok := parseFloat(m[1]); ok {
			return catalog.AttributeValue{Kind: catalog.AttrNumber, Value: v}, true
		}
	}
	return catalog.AttributeValue{}, false
}

func extractRooms(text string) (catalog.AttributeValue, bool) {
	if m := roomsDigit.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return catalog.AttributeValue{Kind: catalog.AttrNumber, Value: float64(n)}, true
		}
	}
	lower := strings.ToLower(text)
	for phrase, n := range roomWords {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return catalog.AttributeValue{Kind: catalog.AttrNumber, Value: float64(n)}, true
		}
	}
	return catalog.AttributeValue{}, false
}

func extractYear(text string) (catalog.AttributeValue, bool) {
	if m := yearWithMarker.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return catalog.AttributeValue{Kind: catalog.AttrNumber, Value: float64(n)}, true
		}
	}
	if m := bareYear.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return catalog.AttributeValue{Kind: catalog.AttrNumber, Value: float64(n)}, true
		}
	}
	return catalog.AttributeValue{}, false
}

func extractMileage(text string) (catalog.AttributeValue, bool) {
	if m := mileageUnit.FindStringSubmatch(text); m != nil {
		if v, ok := parseFloat(m[1]); ok {
			return catalog.AttributeValue{Kind: catalog.AttrNumber, Value: v}, true
		}
	}
	return catalog.AttributeValue{}, false
}

func extractCondition(text string) (catalog.AttributeValue, bool) {
	switch {
	case conditionNew.MatchString(text):
		return catalog.AttributeValue{Kind: catalog.AttrEnum, Text: catalog.ConditionNew}, true
	case conditionUsed.MatchString(text):
		return catalog.AttributeValue{Kind: catalog.AttrEnum, Text: catalog.ConditionUsed}, true
	default:
		return catalog.AttributeValue{}, false
	}
}

func extractPriceHint(text string) (catalog.AttributeValue, bool) {
	switch {
	case hintCheap.MatchString(text):
		return catalog.AttributeValue{Kind: catalog.AttrHint, Text: catalog.PriceHintCheap}, true
	case hintExpensive.MatchString(text):
		return catalog.AttributeValue{Kind: catalog.AttrHint, Text: catalog.PriceHintExpensive}, true
	default:
		return catalog.AttributeValue{}, false
	}
}
