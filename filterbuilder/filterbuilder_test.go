package filterbuilder

import (
	"strings"
	"testing"

	"github.com/soukfinder/searchcore/catalog"
)

func TestBuildNeverInterpolatesUserText(t *testing.T) {
	userText := "'; DROP TABLE listings; --"
	intent := catalog.Intent{
		Category:        &catalog.CategoryRef{ID: 1, Slug: "cars"},
		Location:        &catalog.LocationRef{ID: 2, Kind: catalog.LocationCity},
		TransactionType: &catalog.TransactionRef{Slug: "for-sale"},
		Attributes: map[string]catalog.AttributeValue{
			"condition": {Kind: catalog.AttrEnum, Text: userText},
		},
	}
	p, err := Build(intent, Extras{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(p.WhereSQL, userText) {
		t.Fatalf("WhereSQL must not contain raw user text, got %q", p.WhereSQL)
	}
	found := false
	for _, v := range p.Args {
		if v == userText {
			found = true
		}
	}
	if !found {
		t.Fatal("expected user text to be passed as a parameter value")
	}
}

func TestBuildRangeAttribute(t *testing.T) {
	minV, maxV := 100000.0, 200000.0
	intent := catalog.Intent{
		Attributes: map[string]catalog.AttributeValue{
			"price": {Kind: catalog.AttrRange, Min: &minV, Max: &maxV},
		},
	}
	p, err := Build(intent, Extras{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.WhereSQL, "EXISTS") {
		t.Fatalf("expected an EXISTS clause for range attribute, got %q", p.WhereSQL)
	}
}

func TestBuildSingleNumericBand(t *testing.T) {
	intent := catalog.Intent{
		Attributes: map[string]catalog.AttributeValue{
			"area": {Kind: catalog.AttrNumber, Value: 100},
		},
	}
	p, err := Build(intent, Extras{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var min, max float64
	for k, v := range p.Args {
		if strings.HasSuffix(k, "_min") {
			min = v.(float64)
		}
		if strings.HasSuffix(k, "_max") {
			max = v.(float64)
		}
	}
	if min != 90 || max != 110 {
		t.Fatalf("expected a +/-10%% band [90,110], got [%v,%v]", min, max)
	}
}

func TestBuildExcludesCategoryWhenGated(t *testing.T) {
	intent := catalog.Intent{
		Category: &catalog.CategoryRef{ID: 5},
	}
	p, err := Build(intent, Extras{ExcludeCategory: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(p.WhereSQL, "category_id") {
		t.Fatalf("expected category predicate to be excluded, got %q", p.WhereSQL)
	}
	if p.CategoryID != nil {
		t.Fatal("expected CategoryID to be nil when excluded")
	}
}

func TestBuildHintAttributeEmitsNoClause(t *testing.T) {
	intent := catalog.Intent{
		Attributes: map[string]catalog.AttributeValue{
			"price": {Kind: catalog.AttrHint, Text: "cheap"},
		},
	}
	p, err := Build(intent, Extras{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(p.WhereSQL, "EXISTS") {
		t.Fatalf("expected hint attributes to never become a hard predicate, got %q", p.WhereSQL)
	}
}

func TestBuildAlwaysFiltersActiveStatus(t *testing.T) {
	p, err := Build(catalog.Intent{}, Extras{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.WhereSQL, "status = 'active'") {
		t.Fatalf("expected status predicate, got %q", p.WhereSQL)
	}
}
