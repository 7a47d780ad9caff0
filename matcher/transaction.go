package matcher

import (
	"regexp"

	"github.com/soukfinder/searchcore/catalog"
)

type txPattern struct {
	slug string
	re   *regexp.Regexp
}

// txPatterns is the static, case-insensitive pattern table spec §4.3.3
// names. Order matters: the first pattern to fire wins, and more specific
// rent-period patterns are tried before the generic "for-sale" pattern.
//
// service-requested matches only explicit "wanted" phrasing (مطلوب), never
// general search verbs (بدي، أريد، ابحث) — spec §9's open question is
// resolved in favor of the later/intended behavior (see SPEC_FULL.md §5).
var txPatterns = []txPattern{
	{catalog.TxJobSeeking, regexp.MustCompile(`(?i)يبحث عن عمل|باحث عن عمل|seeking (a )?job|job seeker`)},
	{catalog.TxJobPosting, regexp.MustCompile(`(?i)مطلوب موظف|نوظف|hiring|job opening|we'?re hiring`)},
	{catalog.TxForRentMonthly, regexp.MustCompile(`(?i)ايجار شهري|إيجار شهري|monthly rent`)},
	{catalog.TxForRentDaily, regexp.MustCompile(`(?i)ايجار يومي|إيجار يومي|daily rent`)},
	{catalog.TxForRentYearly, regexp.MustCompile(`(?i)ايجار سنوي|إيجار سنوي|yearly rent|annual rent`)},
	{catalog.TxForRentMonthly, regexp.MustCompile(`(?i)للإيجار|للايجار|for rent`)},
	{catalog.TxForExchange, regexp.MustCompile(`(?i)للتبديل|استبدال|exchange for|trade for`)},
	{catalog.TxServiceOffered, regexp.MustCompile(`(?i)اعرض خدمة|أعرض خدمة|offering (a )?service`)},
	{catalog.TxServiceRequested, regexp.MustCompile(`(?i)مطلوب|wanted`)},
	{catalog.TxForSale, regexp.MustCompile(`(?i)للبيع|for sale`)},
}

// MatchTransactionType implements spec §4.3.3. A null return means "search
// across all types" — the parser must never default to for-sale.
func MatchTransactionType(text string) *catalog.TransactionRef {
	for _, p := range txPatterns {
		if p.re.MatchString(text) {
			return &catalog.TransactionRef{Slug: p.slug, Confidence: 0.90}
		}
	}
	return nil
}
