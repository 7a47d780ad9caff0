package matcher

import (
	"testing"

	"github.com/soukfinder/searchcore/catalog"
)

func TestMatchTransactionTypeForSale(t *testing.T) {
	ref := MatchTransactionType("سيارة تويوتا للبيع في دمشق")
	if ref == nil || ref.Slug != catalog.TxForSale {
		t.Fatalf("expected for-sale, got %+v", ref)
	}
}

func TestMatchTransactionTypeNoGenericWantVerb(t *testing.T) {
	ref := MatchTransactionType("بدي موبايل سامسونج رخيص")
	if ref != nil {
		t.Fatalf("expected no transaction type for a generic want-verb query, got %+v", ref)
	}
}

func TestMatchTransactionTypeServiceRequestedExplicitWanted(t *testing.T) {
	ref := MatchTransactionType("مطلوب سيارة تويوتا")
	if ref == nil || ref.Slug != catalog.TxServiceRequested {
		t.Fatalf("expected service-requested for explicit مطلوب, got %+v", ref)
	}
}

func TestMatchTransactionTypeEnglishForSale(t *testing.T) {
	ref := MatchTransactionType("Toyota for sale in Damascus")
	if ref == nil || ref.Slug != catalog.TxForSale {
		t.Fatalf("expected for-sale, got %+v", ref)
	}
}
