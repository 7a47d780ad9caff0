// Package retrieval implements spec §4.9's RetrievalOrchestrator: the
// component that turns a parsed Intent into a paginated, re-ranked
// ResultPage. It chooses between vector, lexical, and hybrid retrieval,
// applies the category confidence gate, performs the recursive
// parent-category fallback, and re-ranks by location proximity. Grounded
// on the teacher's top-level searchkit_search.go (Search(...) combining
// FTSSearch/SemanticSearch via reciprocal-rank-style fusion behind a single
// Options struct) generalized from RRF fusion to searchcore's
// confidence-gated, location-aware merge.
package retrieval

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/filterbuilder"
	"github.com/soukfinder/searchcore/internal/observe"
	"github.com/soukfinder/searchcore/internal/reqid"
	"github.com/soukfinder/searchcore/llm"
	"github.com/soukfinder/searchcore/resultcache"
)

// Parser is the subset of parser.TieredParser the orchestrator needs.
type Parser interface {
	Parse(ctx context.Context, utterance, language string) (catalog.Intent, error)
}

// VectorStore is spec §4.8's VectorRetriever, backed by pgstore.Store.
type VectorStore interface {
	VectorSearchListings(ctx context.Context, queryVec []float32, language string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error)
	VectorAvailable(ctx context.Context, language string) (bool, error)
}

// LexicalStore is spec §4.8's LexicalRetriever, backed by pgstore.Store.
type LexicalStore interface {
	LexicalSearchListings(ctx context.Context, tokens []string, language string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error)
	TitleOnlySearch(ctx context.Context, tokens []string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error)
	FallbackSearch(ctx context.Context, tokens []string, pred filterbuilder.Predicate, k int) ([]catalog.Listing, error)
	LexicalAvailable(ctx context.Context) (bool, error)
}

// CategoryTreeStore resolves a category's parent for the recursive
// parent-category fallback (spec §4.9 step 6).
type CategoryTreeStore interface {
	ParentCategory(ctx context.Context, categoryID int64) (*catalog.Category, error)
}

// LocationProximityStore resolves province context for location proximity
// re-ranking (spec §4.9 step 7).
type LocationProximityStore interface {
	CityProvince(ctx context.Context, cityID int64, language string) (string, error)
	NeighborhoodCityID(ctx context.Context, neighborhoodID int64) (int64, error)
}

// Validator issues the confidence-gate's yes/no category-fit question
// (spec §4.9 step 4, §6's "lightweight validator call").
type Validator interface {
	ValidateCategory(ctx context.Context, utterance, categoryName string) (bool, error)
}

// Options configures an Orchestrator, following the teacher's
// Options-struct-with-withDefaults convention.
type Options struct {
	CategoryConfidenceGateLow  float64
	CategoryConfidenceGateHigh float64
	VectorMethodMinConfidence  float64

	// CandidatePoolSize bounds how many rows each retriever query fetches
	// before re-ranking and pagination trim it down to Limit.
	CandidatePoolSize int

	// MaxParentWalkDepth bounds the recursive parent-category fallback
	// (spec §4.9 step 6: "max depth 5").
	MaxParentWalkDepth int
}

func (o Options) withDefaults() Options {
	if o.CategoryConfidenceGateLow <= 0 {
		o.CategoryConfidenceGateLow = 0.70
	}
	if o.CategoryConfidenceGateHigh <= 0 {
		o.CategoryConfidenceGateHigh = 0.85
	}
	if o.VectorMethodMinConfidence <= 0 {
		o.VectorMethodMinConfidence = 0.7
	}
	if o.CandidatePoolSize <= 0 {
		o.CandidatePoolSize = 200
	}
	if o.MaxParentWalkDepth <= 0 {
		o.MaxParentWalkDepth = 5
	}
	return o
}

// Params is spec §6's search(params) shape.
type Params struct {
	Query    string
	Language string
	Page     int
	Limit    int
	Filters  filterbuilder.Extras
	UserID   string
}

// Orchestrator implements spec §4.9's RetrievalOrchestrator.
type Orchestrator struct {
	opts Options

	parser    Parser
	vector    VectorStore
	lexical   LexicalStore
	trees     CategoryTreeStore
	proximity LocationProximityStore
	embedder  llm.Embedder
	validator Validator
	cache     *resultcache.Cache
	metrics   *observe.Metrics

	availSF     singleflight.Group
	availMu     sync.RWMutex
	vectorAvail map[string]bool
}

// New constructs an Orchestrator. embedder and validator may be nil, in
// which case vector retrieval and the mid-band confidence gate are skipped
// (degrading to lexical-only, matching ErrEmbeddingUnavailable/
// ErrLLMUnavailable in spec §7).
func New(
	opts Options,
	parser Parser,
	vector VectorStore,
	lexical LexicalStore,
	trees CategoryTreeStore,
	proximity LocationProximityStore,
	embedder llm.Embedder,
	validator Validator,
	cache *resultcache.Cache,
) *Orchestrator {
	return &Orchestrator{
		opts:        opts.withDefaults(),
		parser:      parser,
		vector:      vector,
		lexical:     lexical,
		trees:       trees,
		proximity:   proximity,
		embedder:    embedder,
		validator:   validator,
		cache:       cache,
		vectorAvail: make(map[string]bool),
	}
}

// WithMetrics attaches an observe.Metrics instance Search records
// retrieval-method outcomes to.
func (o *Orchestrator) WithMetrics(m *observe.Metrics) *Orchestrator {
	o.metrics = m
	return o
}

// Search implements spec §4.9's search(params) → ResultPage.
func (o *Orchestrator) Search(ctx context.Context, params Params) (catalog.ResultPage, error) {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	// Step 1: cache key over effective parameters.
	cacheKey := searchCacheKey(params, page, limit)
	if o.cache != nil {
		if cached, ok := o.cache.Get(cacheKey); ok {
			o.metrics.RecordCacheHit(ctx, "result")
			cached.Cached = true
			return cached, nil
		}
		o.metrics.RecordCacheMiss(ctx, "result")
	}

	// Step 2: parse.
	intent, err := o.parser.Parse(ctx, params.Query, params.Language)
	if err != nil {
		return catalog.ResultPage{}, fmt.Errorf("retrieval: parse: %w", err)
	}
	if intent.Unresolved() {
		return catalog.ResultPage{}, fmt.Errorf("retrieval: %w", ErrParseUnresolved)
	}

	// Step 3: predicate inputs ⊎ extras.
	extras := params.Filters

	// Step 4: confidence gate on category.
	var listings []catalog.Listing
	method := ""
	if intent.Category != nil && intent.Confidence < o.opts.CategoryConfidenceGateHigh {
		if intent.Confidence < o.opts.CategoryConfidenceGateLow {
			extras.ExcludeCategory = true
			pred, buildErr := filterbuilder.Build(intent, extras)
			if buildErr != nil {
				return catalog.ResultPage{}, fmt.Errorf("retrieval: build predicate: %w", buildErr)
			}
			hits, searchErr := o.lexical.TitleOnlySearch(ctx, intent.Keywords, pred, o.opts.CandidatePoolSize)
			if searchErr != nil {
				log.Printf("searchcore: [%s] confidence-gate title search failed: %v", reqid.FromContext(ctx), searchErr)
			} else if len(hits) > 0 {
				listings, method = hits, "lexical"
			}
			// On zero hits, fall through to step 5 with the category
			// already excluded (spec §4.9 step 4).
		} else if o.validator != nil {
			ok, valErr := o.validator.ValidateCategory(ctx, params.Query, intent.Category.Name)
			if valErr != nil {
				log.Printf("searchcore: [%s] category validator failed: %v", reqid.FromContext(ctx), valErr)
			} else if !ok {
				extras.ExcludeCategory = true
			}
		}
	}

	if method == "" {
		pred, buildErr := filterbuilder.Build(intent, extras)
		if buildErr != nil {
			return catalog.ResultPage{}, fmt.Errorf("retrieval: build predicate: %w", buildErr)
		}

		// Step 5: method selection.
		method = o.selectMethod(ctx, intent)
		listings, err = o.runMethod(ctx, method, intent, pred)
		if err != nil && method == "vector" {
			// The lexical retriever is the remaining alternate when the
			// vector leg (embedding or KNN query) fails.
			log.Printf("searchcore: [%s] vector search failed, degrading to lexical: %v", reqid.FromContext(ctx), err)
			method = "lexical"
			listings, err = o.runMethod(ctx, method, intent, pred)
		}
		if err != nil {
			return catalog.ResultPage{}, storeFailure(method+" search", err)
		}

		// Step 6: recursive parent-category fallback, then global
		// title/description ILIKE fallback.
		if len(listings) == 0 {
			listings, err = o.parentCategoryFallback(ctx, intent, extras)
			if err != nil {
				return catalog.ResultPage{}, storeFailure("parent fallback", err)
			}
			if len(listings) > 0 {
				method = "lexical"
			}
		}
		if len(listings) == 0 {
			globalExtras := extras
			globalExtras.ExcludeCategory = true
			globalPred, buildErr := filterbuilder.Build(intent, globalExtras)
			if buildErr != nil {
				return catalog.ResultPage{}, fmt.Errorf("retrieval: build global predicate: %w", buildErr)
			}
			listings, err = o.lexical.TitleOnlySearch(ctx, intent.Keywords, globalPred, o.opts.CandidatePoolSize)
			if err != nil {
				return catalog.ResultPage{}, storeFailure("title-only fallback", err)
			}
			if len(listings) == 0 {
				listings, err = o.lexical.FallbackSearch(ctx, intent.Keywords, globalPred, o.opts.CandidatePoolSize)
				if err != nil {
					return catalog.ResultPage{}, storeFailure("description fallback", err)
				}
			}
			method = "lexical"
		}
	}

	o.metrics.RecordRetrievalMethod(ctx, method)

	// Step 7: location proximity re-ranking.
	listings, err = o.rerank(ctx, listings, intent, params.Language)
	if err != nil {
		return catalog.ResultPage{}, err
	}

	// Step 8: paginate.
	total := len(listings)
	offset := (page - 1) * limit
	var pageListings []catalog.Listing
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		pageListings = listings[offset:end]
	}

	result := catalog.ResultPage{
		Listings: pageListings,
		Page:     page,
		Limit:    limit,
		Total:    total,
		Method:   method,
		Intent:   intent,
	}

	// Step 9: cache only non-empty pages.
	if o.cache != nil {
		o.cache.Put(cacheKey, result)
	}
	return result, nil
}

// selectMethod implements spec §4.9 step 5.
func (o *Orchestrator) selectMethod(ctx context.Context, intent catalog.Intent) string {
	if intent.Confidence < 0.5 {
		return "lexical"
	}
	if o.vector != nil && o.embedder != nil && o.vectorAvailable(ctx, intent.Language) &&
		intent.Confidence > o.opts.VectorMethodMinConfidence &&
		(len(intent.Attributes) >= 2 || len(intent.Keywords) >= 2) {
		return "vector"
	}
	return "hybrid"
}

func (o *Orchestrator) runMethod(ctx context.Context, method string, intent catalog.Intent, pred filterbuilder.Predicate) ([]catalog.Listing, error) {
	switch method {
	case "vector":
		return o.runVector(ctx, intent, pred)
	case "lexical":
		return o.lexical.LexicalSearchListings(ctx, intent.Keywords, intent.Language, pred, o.opts.CandidatePoolSize)
	default: // hybrid
		return o.runHybrid(ctx, intent, pred)
	}
}

func (o *Orchestrator) runVector(ctx context.Context, intent catalog.Intent, pred filterbuilder.Predicate) ([]catalog.Listing, error) {
	vec, err := o.embedder.Embed(ctx, intent.Normalized)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return o.vector.VectorSearchListings(ctx, vec, intent.Language, pred, o.opts.CandidatePoolSize)
}

// runHybrid runs vector and lexical concurrently (spec §5: "hybrid
// retrievals run concurrently") and merges deterministically: vector hits
// first, then novel lexical hits (spec §4.9's result-merge rule).
func (o *Orchestrator) runHybrid(ctx context.Context, intent catalog.Intent, pred filterbuilder.Predicate) ([]catalog.Listing, error) {
	var vectorHits, lexicalHits []catalog.Listing

	g, gctx := errgroup.WithContext(ctx)
	if o.vector != nil && o.embedder != nil && o.vectorAvailable(ctx, intent.Language) {
		g.Go(func() error {
			hits, err := o.runVector(gctx, intent, pred)
			if err != nil {
				log.Printf("searchcore: [%s] hybrid vector leg failed: %v", reqid.FromContext(ctx), err)
				return nil
			}
			vectorHits = hits
			return nil
		})
	}
	g.Go(func() error {
		hits, err := o.lexical.LexicalSearchListings(gctx, intent.Keywords, intent.Language, pred, o.opts.CandidatePoolSize)
		if err != nil {
			log.Printf("searchcore: [%s] hybrid lexical leg failed: %v", reqid.FromContext(ctx), err)
			return nil
		}
		lexicalHits = hits
		return nil
	})
	_ = g.Wait() // both legs swallow their own errors; this never fails

	return mergeHybrid(vectorHits, lexicalHits), nil
}

func mergeHybrid(vectorHits, lexicalHits []catalog.Listing) []catalog.Listing {
	seen := make(map[int64]struct{}, len(vectorHits)+len(lexicalHits))
	out := make([]catalog.Listing, 0, len(vectorHits)+len(lexicalHits))
	for _, l := range vectorHits {
		if _, ok := seen[l.ID]; ok {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	for _, l := range lexicalHits {
		if _, ok := seen[l.ID]; ok {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	return out
}

// parentCategoryFallback walks up the category tree (max depth
// MaxParentWalkDepth), running the lexical retriever at each ancestor; the
// first non-empty result wins (spec §4.9 step 6).
func (o *Orchestrator) parentCategoryFallback(ctx context.Context, intent catalog.Intent, extras filterbuilder.Extras) ([]catalog.Listing, error) {
	if intent.Category == nil || extras.ExcludeCategory || o.trees == nil {
		return nil, nil
	}

	categoryID := intent.Category.ID
	for depth := 0; depth < o.opts.MaxParentWalkDepth; depth++ {
		parent, err := o.trees.ParentCategory(ctx, categoryID)
		if err != nil {
			return nil, fmt.Errorf("parent category: %w", err)
		}
		if parent == nil {
			return nil, nil
		}

		walked := intent
		walked.Category = &catalog.CategoryRef{ID: parent.ID, Slug: parent.Slug, Level: parent.Level}
		pred, err := filterbuilder.Build(walked, filterbuilder.Extras{ExcludeLocation: extras.ExcludeLocation})
		if err != nil {
			return nil, fmt.Errorf("build parent predicate: %w", err)
		}
		hits, err := o.lexical.LexicalSearchListings(ctx, intent.Keywords, intent.Language, pred, o.opts.CandidatePoolSize)
		if err != nil {
			return nil, fmt.Errorf("lexical search at parent %d: %w", parent.ID, err)
		}
		if len(hits) > 0 {
			return hits, nil
		}
		categoryID = parent.ID
	}
	return nil, nil
}

// rerank implements spec §4.9 step 7: location proximity re-ranking. Each
// listing's primary_score is rank_score + similarity_score +
// (boosted?0.2:0) + 0.01*priority; when the intent carries a location, the
// final order is (same_city_rank, same_province_rank, primary_score).
func (o *Orchestrator) rerank(ctx context.Context, listings []catalog.Listing, intent catalog.Intent, language string) ([]catalog.Listing, error) {
	for i := range listings {
		l := &listings[i]
		l.PrimaryScore = l.RankScore + l.SimilarityScore + boostBonus(l.Boosted) + 0.01*float64(l.Priority)
	}

	if intent.Location == nil || o.proximity == nil {
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].PrimaryScore > listings[j].PrimaryScore
		})
		return listings, nil
	}

	targetCityID, err := o.locationCityID(ctx, intent.Location)
	if err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			return nil, err
		}
		log.Printf("searchcore: [%s] resolve location city id failed: %v", reqid.FromContext(ctx), err)
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].PrimaryScore > listings[j].PrimaryScore
		})
		return listings, nil
	}
	targetProvince, err := o.proximity.CityProvince(ctx, targetCityID, language)
	if err != nil {
		log.Printf("searchcore: [%s] resolve target province failed: %v", reqid.FromContext(ctx), err)
	}

	provinceCache := map[int64]string{}
	provinceOf := func(cityID int64) string {
		if p, ok := provinceCache[cityID]; ok {
			return p
		}
		p, err := o.proximity.CityProvince(ctx, cityID, language)
		if err != nil {
			log.Printf("searchcore: [%s] resolve listing province failed: %v", reqid.FromContext(ctx), err)
		}
		provinceCache[cityID] = p
		return p
	}

	sort.SliceStable(listings, func(i, j int) bool {
		ri := proximityRank(listings[i].CityID, targetCityID, targetProvince, provinceOf)
		rj := proximityRank(listings[j].CityID, targetCityID, targetProvince, provinceOf)
		if ri.sameCityRank != rj.sameCityRank {
			return ri.sameCityRank < rj.sameCityRank
		}
		if ri.sameProvinceRank != rj.sameProvinceRank {
			return ri.sameProvinceRank < rj.sameProvinceRank
		}
		return listings[i].PrimaryScore > listings[j].PrimaryScore
	})
	return listings, nil
}

type proximity struct {
	sameCityRank     int
	sameProvinceRank int
}

func proximityRank(listingCityID, targetCityID int64, targetProvince string, provinceOf func(int64) string) proximity {
	if listingCityID == targetCityID {
		return proximity{0, 0}
	}
	if targetProvince != "" && provinceOf(listingCityID) == targetProvince {
		return proximity{1, 0}
	}
	return proximity{1, 1}
}

func (o *Orchestrator) locationCityID(ctx context.Context, loc *catalog.LocationRef) (int64, error) {
	if loc.Kind == catalog.LocationCity {
		return loc.ID, nil
	}
	cityID, err := o.proximity.NeighborhoodCityID(ctx, loc.ID)
	if err != nil {
		return 0, err
	}
	if cityID == 0 {
		return 0, fmt.Errorf("%w: neighborhood %d has no resolvable parent city", ErrInvariantViolation, loc.ID)
	}
	return cityID, nil
}

// storeFailure wraps a retriever store error that survived every alternate
// path, chaining both the local sentinel and the underlying cause.
func storeFailure(op string, err error) error {
	return fmt.Errorf("retrieval: %s: %w: %w", op, ErrStoreUnavailable, err)
}

func boostBonus(boosted bool) float64 {
	if boosted {
		return 0.2
	}
	return 0
}

// vectorAvailable memoizes the vector-retriever availability probe per
// language (spec §4.8: "The orchestrator memoizes this probe"),
// single-flighting concurrent first-call probes the way hotcache
// single-flights its refresh.
func (o *Orchestrator) vectorAvailable(ctx context.Context, language string) bool {
	o.availMu.RLock()
	avail, ok := o.vectorAvail[language]
	o.availMu.RUnlock()
	if ok {
		return avail
	}

	v, err, _ := o.availSF.Do("vector:"+language, func() (any, error) {
		o.availMu.RLock()
		avail, ok := o.vectorAvail[language]
		o.availMu.RUnlock()
		if ok {
			return avail, nil
		}
		avail, err := o.vector.VectorAvailable(ctx, language)
		if err != nil {
			return false, err
		}
		o.availMu.Lock()
		o.vectorAvail[language] = avail
		o.availMu.Unlock()
		return avail, nil
	})
	if err != nil {
		log.Printf("searchcore: [%s] vector availability probe failed: %v", reqid.FromContext(ctx), err)
		return false
	}
	return v.(bool)
}

func searchCacheKey(params Params, page, limit int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("search:%s:%s:%d:%d:%v:%s",
		params.Query, params.Language, page, limit, params.Filters, params.UserID)))
	return "search:" + hex.EncodeToString(sum[:])
}
