// Package filterbuilder composes a parameterized predicate set from a
// structured Intent, following spec §4.7. It is a pure function: the
// resulting Predicate carries only placeholder-bound parameters, never a
// user-supplied substring spliced into SQL text, so the store layer in
// pgstore can safely interpolate the WhereSQL fragment as trusted text.
package filterbuilder

import (
	"fmt"
	"strings"

	"github.com/soukfinder/searchcore/catalog"
)

// Extras are search-time overrides that are not derived from the parsed
// Intent (spec §4.9 step 3: "searchParams = FilterBuilder.toPredicateInputs(intent) ⊎ extras").
type Extras struct {
	// ExcludeCategory drops the category predicate even if intent.Category
	// is present, used by the orchestrator's confidence gate (spec §4.9
	// step 4) and by the global fallback searches (spec §4.9 step 6).
	ExcludeCategory bool

	// ExcludeLocation drops the location predicate, used by the global
	// fallback searches.
	ExcludeLocation bool

	// UserID is carried through for listings that might need owner
	// exclusion; unused by the predicate itself today but kept on the
	// struct so callers have a single place to pass search-scoped extras.
	UserID string
}

// Predicate is a safe-to-splice WHERE fragment plus its named parameters.
// WhereSQL never contains user-supplied text; only placeholder names like
// "@category_id" appear where a value would go.
type Predicate struct {
	WhereSQL string
	Args     map[string]any

	CategoryID   *int64
	LocationID   *int64
	LocationKind catalog.LocationKind
}

// Build implements spec §4.7's predicate composition.
func Build(intent catalog.Intent, extras Extras) (Predicate, error) {
	clauses := []string{"l.status = 'active'"}
	args := map[string]any{}

	p := Predicate{}

	if intent.Category != nil && !extras.ExcludeCategory {
		clauses = append(clauses, "l.category_id = @category_id")
		args["category_id"] = intent.Category.ID
		id := intent.Category.ID
		p.CategoryID = &id
	}

	if intent.Location != nil && !extras.ExcludeLocation {
		id := intent.Location.ID
		p.LocationID = &id
		p.LocationKind = intent.Location.Kind
		switch intent.Location.Kind {
		case catalog.LocationCity:
			clauses = append(clauses, "l.city_id = @city_id")
			args["city_id"] = id
		case catalog.LocationNeighborhood:
			clauses = append(clauses, "l.neighborhood_id = @neighborhood_id")
			args["neighborhood_id"] = id
		}
	}

	if intent.TransactionType != nil {
		clauses = append(clauses, "l.transaction_type_slug = @transaction_slug")
		args["transaction_slug"] = intent.TransactionType.Slug
	}

	i := 0
	for slug, attr := range intent.Attributes {
		i++
		prefix := fmt.Sprintf("attr_%d", i)
		clause, err := attributeClause(prefix, slug, attr, args)
		if err != nil {
			return Predicate{}, err
		}
		if clause != "" {
			clauses = append(clauses, clause)
		}
	}

	p.WhereSQL = strings.Join(clauses, " AND ")
	p.Args = args
	return p, nil
}

func attributeClause(prefix, slug string, attr catalog.AttributeValue, args map[string]any) (string, error) {
	slugArg := prefix + "_slug"
	args[slugArg] = slug

	switch attr.Kind {
	case catalog.AttrRange:
		if attr.Min == nil && attr.Max == nil {
			return "", fmt.Errorf("filterbuilder: range attribute %q has no bounds", slug)
		}
		var bounds []string
		if attr.Min != nil {
			minArg := prefix + "_min"
			args[minArg] = *attr.Min
			bounds = append(bounds, "la.value_numeric >= @"+minArg)
		}
		if attr.Max != nil {
			maxArg := prefix + "_max"
			args[maxArg] = *attr.Max
			bounds = append(bounds, "la.value_numeric <= @"+maxArg)
		}
		return existsClause(slugArg, strings.Join(bounds, " AND ")), nil

	case catalog.AttrNumber:
		// Single numeric value: treated as a +/-10% band uniformly across
		// retrievers, resolving spec §9's open question the same way in
		// every component (see SPEC_FULL.md §5).
		minArg, maxArg := prefix+"_min", prefix+"_max"
		args[minArg] = attr.Value * 9 / 10
		args[maxArg] = attr.Value * 11 / 10
		return existsClause(slugArg, fmt.Sprintf("la.value_numeric >= @%s AND la.value_numeric <= @%s", minArg, maxArg)), nil

	case catalog.AttrEnum:
		textArg := prefix + "_text"
		args[textArg] = attr.Text
		return existsClause(slugArg, "lower(la.value_text) = lower(@"+textArg+")"), nil

	case catalog.AttrHint:
		// Qualitative hints (e.g. priceIndicator = cheap) are advisory only
		// and never become a hard predicate.
		delete(args, slugArg)
		return "", nil

	default:
		return "", fmt.Errorf("filterbuilder: unknown attribute kind %q for %q", attr.Kind, slug)
	}
}

func existsClause(slugArg, condition string) string {
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM listing_attributes la WHERE la.listing_id = l.id AND la.attribute_slug = @%s AND %s)",
		slugArg, condition,
	)
}
