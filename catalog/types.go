// Package catalog holds the data model shared by every component of
// searchcore: categories, locations, transaction types, attribute values,
// the parsed Intent, and the Listing shape retrievers enrich their hits
// with.
package catalog

import "time"

// LocationKind discriminates the two Location variants.
type LocationKind string

const (
	LocationCity         LocationKind = "city"
	LocationNeighborhood LocationKind = "neighborhood"
)

// Category is a node in the (acyclic) category tree. Level 0 is root;
// higher levels are more specific. A category never owns a pointer to its
// parent — ParentID is a lookup key, resolved on demand (spec §9).
type Category struct {
	ID          int64
	Slug        string
	NameAr      string
	NameEn      string
	Level       int
	ParentID    *int64
	Path        string // materialized path, e.g. "1.4.19"
	Active      bool
	SortOrder   int
	KeywordsAr  []string
	KeywordsEn  []string
	MetaAr      string
	MetaEn      string
}

// Name returns the localized category name for language ("ar" or "en").
func (c Category) Name(language string) string {
	if language == "ar" {
		return c.NameAr
	}
	return c.NameEn
}

// Keywords returns the curated keyword array for language.
func (c Category) Keywords(language string) []string {
	if language == "ar" {
		return c.KeywordsAr
	}
	return c.KeywordsEn
}

// MetaKeywords returns the free-text meta-keyword blob for language.
func (c Category) MetaKeywords(language string) string {
	if language == "ar" {
		return c.MetaAr
	}
	return c.MetaEn
}

// City is one City-variant Location.
type City struct {
	ID           int64
	NameAr       string
	NameEn       string
	ProvinceAr   string
	ProvinceEn   string
	Lat, Lon     float64
	HasCoords    bool
}

// Neighborhood is one Neighborhood-variant Location.
type Neighborhood struct {
	ID       int64
	NameAr   string
	NameEn   string
	CityID   int64
}

// TransactionType is one member of the small closed set spec §3 names.
type TransactionType struct {
	ID     int64
	Slug   string
	NameAr string
	NameEn string
}

// Well-known transaction type slugs.
const (
	TxForSale          = "for-sale"
	TxForRentMonthly   = "for-rent-monthly"
	TxForRentDaily     = "for-rent-daily"
	TxForRentYearly    = "for-rent-yearly"
	TxForExchange      = "for-exchange"
	TxServiceRequested = "service-requested"
	TxServiceOffered   = "service-offered"
	TxJobPosting       = "job-posting"
	TxJobSeeking       = "job-seeking"
)

// AttributeKind tags the shape an AttributeValue carries.
type AttributeKind string

const (
	AttrNumber AttributeKind = "number"
	AttrRange  AttributeKind = "range"
	AttrEnum   AttributeKind = "enum"
	AttrHint   AttributeKind = "hint"
)

// AttributeValue is a tagged union over the four attribute shapes spec §3
// names. Only the fields relevant to Kind are populated.
type AttributeValue struct {
	Kind AttributeKind

	// AttrNumber
	Value float64

	// AttrRange: at least one of Min/Max is non-nil.
	Min *float64
	Max *float64

	// AttrEnum / AttrHint
	Text string
}

// Well-known attribute slugs.
const (
	AttrSlugPrice     = "price"
	AttrSlugArea      = "area"
	AttrSlugRooms     = "rooms"
	AttrSlugYear      = "year"
	AttrSlugMileage   = "mileage"
	AttrSlugCondition = "condition"
)

// Enum values for the "condition" attribute.
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// Hint values for the "price" attribute when only a qualitative signal is
// present.
const (
	PriceHintCheap     = "cheap"
	PriceHintExpensive = "expensive"
)

// CategoryRef is the category facet of an Intent: a resolved id plus the
// parser's confidence in that resolution.
type CategoryRef struct {
	ID         int64
	Slug       string
	Name       string
	Level      int
	Confidence float64
}

// LocationRef is the location facet of an Intent.
type LocationRef struct {
	ID         int64
	Kind       LocationKind
	Name       string
	Confidence float64
}

// TransactionRef is the transaction-type facet of an Intent.
type TransactionRef struct {
	Slug       string
	Confidence float64
}

// Intent is the structured output of the TieredParser (spec §3/§4.6).
type Intent struct {
	Original   string
	Normalized string
	Language   string

	Category        *CategoryRef
	Location        *LocationRef
	TransactionType *TransactionRef
	Attributes      map[string]AttributeValue
	Keywords        []string

	Confidence float64
	Tier       int
	Method     string // e.g. "db", "semantic-cache", "llm-tier3", "llm-tier4", "fallback"

	LLMModel  string
	LLMTokens int
}

// Unresolved reports whether the intent carries neither a category nor any
// keywords, the condition spec §7 calls ParseUnresolved.
func (i Intent) Unresolved() bool {
	return i.Category == nil && len(i.Keywords) == 0
}

// Listing is the external entity retrievers return, enriched with the
// commonly needed attributes spec §4.8 names.
type Listing struct {
	ID              int64
	Title           string
	Description     string
	CategoryID      int64
	CityID          int64
	NeighborhoodID  *int64
	TransactionSlug string
	Boosted         bool
	Priority        int
	CreatedAt       time.Time

	Price    *float64
	Currency string
	Area     *float64
	Rooms    *int
	Bathrooms *int
	Year     *int
	Mileage  *int
	Brand    string
	Model    string

	// Retrieval-time scoring, populated by the retriever/orchestrator.
	SimilarityScore float64
	RankScore       float64
	PrimaryScore    float64
}

// ResultPage is the paginated, re-ranked output of a search call (spec §6:
// `search(...) → ResultPage`).
type ResultPage struct {
	Listings []Listing
	Page     int
	Limit    int
	Total    int
	Cached   bool
	Method   string // "vector" | "lexical" | "hybrid"
	Intent   Intent
}

// ParsedResultRecord is a semantic-cache entry (spec §3).
type ParsedResultRecord struct {
	NormalizedText string
	Embedding      []float32
	Intent         Intent
	HitCount       int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
