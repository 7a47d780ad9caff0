// Package parser implements spec §4.6's TieredParser: the five-tier
// escalation from exact cache through DB matching, semantic cache, and two
// LLM prompt tiers.
package parser

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/hotcache"
	"github.com/soukfinder/searchcore/internal/normalize"
	"github.com/soukfinder/searchcore/internal/observe"
	"github.com/soukfinder/searchcore/internal/reqid"
	"github.com/soukfinder/searchcore/internal/ttlcache"
	"github.com/soukfinder/searchcore/llm"
	"github.com/soukfinder/searchcore/matcher"
	"github.com/soukfinder/searchcore/semanticcache"
)

// Options configures a TieredParser, following the teacher's
// Options-struct-per-component convention.
type Options struct {
	Tier1ConfidenceThreshold float64
	ExactCacheTTL            time.Duration
	Tier3Timeout             time.Duration
	Tier4Timeout             time.Duration
}

// withDefaults mirrors worker.Options.withDefaults.
func (o Options) withDefaults() Options {
	if o.Tier1ConfidenceThreshold <= 0 {
		o.Tier1ConfidenceThreshold = 0.80
	}
	if o.ExactCacheTTL <= 0 {
		o.ExactCacheTTL = time.Hour
	}
	if o.Tier3Timeout <= 0 {
		o.Tier3Timeout = 500 * time.Millisecond
	}
	if o.Tier4Timeout <= 0 {
		o.Tier4Timeout = 1500 * time.Millisecond
	}
	return o
}

// AttributeExtractor is the subset of attributes.Extract the parser needs,
// kept as an interface so tests can swap it.
type AttributeExtractor func(text string) map[string]catalog.AttributeValue

// TieredParser implements spec §4.6's parse(utterance, language) → Intent.
type TieredParser struct {
	opts Options

	hot           *hotcache.HotCache
	categoryStore matcher.CategoryStore
	locationStore matcher.LocationStore
	leafStore     matcher.LeafStore
	extractAttrs  AttributeExtractor
	semantic      *semanticcache.Cache
	llmClient     *llm.Client
	metrics       *observe.Metrics

	exact *exactCache
}

// WithMetrics attaches an observe.Metrics instance that Parse will record
// tier outcomes to (spec §5's tier0..tier4/total stats counters). Optional;
// a nil receiver or unset metrics field is a no-op.
func (p *TieredParser) WithMetrics(m *observe.Metrics) *TieredParser {
	p.metrics = m
	return p
}

// New constructs a TieredParser. llmClient may be nil, in which case Tiers
// 3/4 are skipped and Tier 1's best-effort intent is returned with its
// confidence scaled by 0.8, Tier 4 and method "fallback" (matching the
// ErrLLMUnavailable degradation in spec §7).
func New(
	opts Options,
	hot *hotcache.HotCache,
	categoryStore matcher.CategoryStore,
	locationStore matcher.LocationStore,
	leafStore matcher.LeafStore,
	extractAttrs AttributeExtractor,
	semantic *semanticcache.Cache,
	llmClient *llm.Client,
) *TieredParser {
	return &TieredParser{
		opts:          opts.withDefaults(),
		hot:           hot,
		categoryStore: categoryStore,
		locationStore: locationStore,
		leafStore:     leafStore,
		extractAttrs:  extractAttrs,
		semantic:      semantic,
		llmClient:     llmClient,
		exact:         ttlcache.New[catalog.Intent](),
	}
}

// Parse implements spec §4.6.
func (p *TieredParser) Parse(ctx context.Context, utterance, language string) (catalog.Intent, error) {
	runeLen := len([]rune(utterance))
	if runeLen <= 1 || runeLen > 500 {
		return catalog.Intent{}, fmt.Errorf("%w: utterance length %d", ErrInvalidInput, runeLen)
	}
	if language != normalize.Arabic && language != normalize.English {
		return catalog.Intent{}, fmt.Errorf("%w: unknown language %q", ErrInvalidInput, language)
	}

	normalized := string(normalize.Normalize(utterance))
	tokens := normalize.Tokenize(utterance, language)

	key := exactKey(normalized)
	if cached, ok := p.exact.Get(key); ok {
		cached.Tier = 0
		p.metrics.RecordCacheHit(ctx, "exact")
		p.metrics.RecordParseTier(ctx, 0)
		return cached, nil
	}
	p.metrics.RecordCacheMiss(ctx, "exact")

	intent, err := p.tier1(ctx, utterance, normalized, language, tokens)
	if err != nil {
		return catalog.Intent{}, err
	}
	if intent.Confidence >= p.opts.Tier1ConfidenceThreshold {
		intent.Tier = 1
		p.finalize(ctx, key, normalized, intent)
		p.metrics.RecordParseTier(ctx, 1)
		return intent, nil
	}

	if p.semantic != nil {
		if semIntent, semErr := p.semantic.Lookup(ctx, normalized); semErr != nil {
			log.Printf("searchcore: [%s] semantic cache lookup failed: %v", reqid.FromContext(ctx), semErr)
		} else if semIntent != nil {
			semIntent.Tier = 2
			semIntent.Method = "semantic-cache"
			p.finalize(ctx, key, normalized, *semIntent)
			p.metrics.RecordCacheHit(ctx, "semantic")
			p.metrics.RecordParseTier(ctx, 2)
			return *semIntent, nil
		}
		p.metrics.RecordCacheMiss(ctx, "semantic")
	}

	if p.llmClient != nil {
		if resolved, ok := p.tier3(ctx, utterance, language, tokens, intent); ok {
			resolved.Tier = 3
			p.finalize(ctx, key, normalized, resolved)
			p.metrics.RecordParseTier(ctx, 3)
			return resolved, nil
		}

		if resolved, ok := p.tier4(ctx, utterance, language, tokens, intent); ok {
			resolved.Tier = 4
			p.finalize(ctx, key, normalized, resolved)
			p.metrics.RecordParseTier(ctx, 4)
			return resolved, nil
		}
	}

	intent.Confidence *= 0.8
	intent.Tier = 4
	intent.Method = "fallback"
	p.finalize(ctx, key, normalized, intent)
	p.metrics.RecordParseTier(ctx, 4)
	return intent, nil
}

func (p *TieredParser) finalize(ctx context.Context, key, normalized string, intent catalog.Intent) {
	p.exact.Set(key, intent, p.opts.ExactCacheTTL)
	if p.semantic == nil {
		return
	}
	if err := p.semantic.Store(ctx, normalized, intent); err != nil {
		log.Printf("searchcore: [%s] semantic cache store failed: %v", reqid.FromContext(ctx), err)
	}
}

func (p *TieredParser) tier1(ctx context.Context, original, normalized, language string, tokens []string) (catalog.Intent, error) {
	snap := p.hot.Snapshot()

	var category *catalog.CategoryRef
	var location *catalog.LocationRef

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := matcher.MatchCategory(gctx, snap, p.categoryStore, tokens, language)
		if err != nil {
			log.Printf("searchcore: [%s] category match failed: %v", reqid.FromContext(ctx), err)
			return nil
		}
		category = c
		return nil
	})
	g.Go(func() error {
		l, err := matcher.MatchLocation(gctx, snap, p.locationStore, tokens, language)
		if err != nil {
			log.Printf("searchcore: [%s] location match failed: %v", reqid.FromContext(ctx), err)
			return nil
		}
		location = l
		return nil
	})
	_ = g.Wait() // both goroutines swallow their own errors; this never fails

	tx := matcher.MatchTransactionType(original)
	attrs := p.extractAttrs(original)

	if category != nil && category.Level < 2 {
		if leaf, err := matcher.FindLeafCategory(ctx, p.leafStore, category.ID, tokens, language); err != nil {
			log.Printf("searchcore: [%s] leaf category resolution failed: %v", reqid.FromContext(ctx), err)
		} else if leaf != nil {
			leaf.Confidence = category.Confidence * 0.95
			category = leaf
		}
	}

	intent := catalog.Intent{
		Original:        original,
		Normalized:      normalized,
		Language:        language,
		Category:        category,
		Location:        location,
		TransactionType: tx,
		Attributes:      attrs,
		Keywords:        tokens,
		Method:          "db",
	}
	intent.Confidence = weightedConfidence(category, location, tx, attrs)
	return intent, nil
}

// weightedConfidence implements spec §4.6 step 4's formula.
func weightedConfidence(category *catalog.CategoryRef, location *catalog.LocationRef, tx *catalog.TransactionRef, attrs map[string]catalog.AttributeValue) float64 {
	var sumW, sumWC float64
	if category != nil {
		sumW += 0.40
		sumWC += 0.40 * category.Confidence
	}
	if location != nil {
		sumW += 0.30
		sumWC += 0.30 * location.Confidence
	}
	if tx != nil && tx.Confidence > 0.7 {
		sumW += 0.15
		sumWC += 0.15 * tx.Confidence
	}
	if len(attrs) > 0 {
		sumW += 0.15
		sumWC += 0.15 * 1.0
	}
	if sumW == 0 {
		return 0
	}
	return sumWC / sumW
}

func (p *TieredParser) tier3(ctx context.Context, utterance, language string, tokens []string, tier1Intent catalog.Intent) (catalog.Intent, bool) {
	tctx, cancel := context.WithTimeout(ctx, p.opts.Tier3Timeout)
	defer cancel()

	hints, tokensUsed, err := p.llmClient.Tier3Hints(tctx, utterance, language)
	if err != nil {
		log.Printf("searchcore: [%s] tier3 llm call failed: %v", reqid.FromContext(ctx), err)
		return catalog.Intent{}, false
	}
	return p.resolveHints(ctx, hints, tokensUsed, language, tier1Intent, "llm-tier3")
}

func (p *TieredParser) tier4(ctx context.Context, utterance, language string, tokens []string, tier1Intent catalog.Intent) (catalog.Intent, bool) {
	tctx, cancel := context.WithTimeout(ctx, p.opts.Tier4Timeout)
	defer cancel()

	hints, tokensUsed, err := p.llmClient.Tier4Hints(tctx, utterance, language)
	if err != nil {
		log.Printf("searchcore: [%s] tier4 llm call failed: %v", reqid.FromContext(ctx), err)
		return catalog.Intent{}, false
	}
	resolved, ok := p.resolveHints(ctx, hints, tokensUsed, language, tier1Intent, "llm-tier4")
	if !ok {
		return catalog.Intent{}, false
	}
	for slug, text := range hints.Attributes {
		if _, exists := resolved.Attributes[slug]; !exists && text != "" {
			resolved.Attributes[slug] = catalog.AttributeValue{Kind: catalog.AttrEnum, Text: text}
		}
	}
	return resolved, true
}

// resolveHints feeds LLM hints back through matchCategory/matchLocation per
// spec §4.6 steps 6/7, keeping Tier 1's attributes and keywords if any hint
// resolves.
func (p *TieredParser) resolveHints(ctx context.Context, hints llm.Hints, tokensUsed int, language string, tier1Intent catalog.Intent, method string) (catalog.Intent, bool) {
	snap := p.hot.Snapshot()
	resolved := false
	intent := tier1Intent

	if hints.Category != "" {
		hintTokens := normalize.Tokenize(hints.Category, language)
		if c, err := matcher.MatchCategory(ctx, snap, p.categoryStore, hintTokens, language); err == nil && c != nil {
			intent.Category = c
			resolved = true
		}
	}
	if hints.Location != "" {
		hintTokens := normalize.Tokenize(hints.Location, language)
		if l, err := matcher.MatchLocation(ctx, snap, p.locationStore, hintTokens, language); err == nil && l != nil {
			intent.Location = l
			resolved = true
		}
	}
	if hints.Transaction != "" {
		if tx := matcher.MatchTransactionType(hints.Transaction); tx != nil {
			intent.TransactionType = tx
			resolved = true
		}
	}

	if !resolved {
		return catalog.Intent{}, false
	}

	intent.Confidence = 0.85
	intent.Method = method
	intent.LLMTokens = tokensUsed
	return intent, true
}
