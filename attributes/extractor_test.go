package attributes

import (
	"testing"

	"github.com/soukfinder/searchcore/catalog"
)

func TestExtractPriceRangeWithCurrency(t *testing.T) {
	out := Extract("شقة بسعر من 100000 إلى 200000 ليرة")
	price, ok := out[catalog.AttrSlugPrice]
	if !ok || price.Kind != catalog.AttrRange {
		t.Fatalf("expected a price range, got %+v", out)
	}
	if price.Min == nil || price.Max == nil || *price.Min != 100000 || *price.Max != 200000 {
		t.Fatalf("expected [100000,200000], got min=%v max=%v", price.Min, price.Max)
	}
}

func TestExtractPriceRangeMillionMultiplier(t *testing.T) {
	out := Extract("أرض من 2 الى 3 مليون")
	price, ok := out[catalog.AttrSlugPrice]
	if !ok || price.Kind != catalog.AttrRange {
		t.Fatalf("expected a price range, got %+v", out)
	}
	if *price.Min != 2_000_000 || *price.Max != 3_000_000 {
		t.Fatalf("expected million-scaled range, got min=%v max=%v", *price.Min, *price.Max)
	}
}

func TestExtractPriceHintCheap(t *testing.T) {
	out := Extract("بدي موبايل سامسونج رخيص")
	price, ok := out[catalog.AttrSlugPrice]
	if !ok || price.Kind != catalog.AttrHint || price.Text != catalog.PriceHintCheap {
		t.Fatalf("expected a cheap price hint, got %+v", out)
	}
}

func TestExtractRoomsDigit(t *testing.T) {
	out := Extract("شقة 3 غرف للإيجار")
	rooms, ok := out[catalog.AttrSlugRooms]
	if !ok || rooms.Value != 3 {
		t.Fatalf("expected 3 rooms, got %+v", out)
	}
}

func TestExtractYearWithMarker(t *testing.T) {
	out := Extract("سيارة موديل 2019 للبيع")
	year, ok := out[catalog.AttrSlugYear]
	if !ok || year.Value != 2019 {
		t.Fatalf("expected year 2019, got %+v", out)
	}
}

func TestExtractConditionUsed(t *testing.T) {
	out := Extract("سيارة مستعملة للبيع")
	cond, ok := out[catalog.AttrSlugCondition]
	if !ok || cond.Text != catalog.ConditionUsed {
		t.Fatalf("expected used condition, got %+v", out)
	}
}

func TestExtractRangeWinsOverSingle(t *testing.T) {
	out := Extract("من 100 الى 200 متر مربع")
	area, ok := out[catalog.AttrSlugArea]
	if !ok || area.Kind != catalog.AttrRange {
		t.Fatalf("expected range to win over single value, got %+v", out)
	}
}
