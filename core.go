// Package searchcore is the Query Understanding & Retrieval Core for the
// Arabic/English classifieds marketplace (spec §1). Core is the
// transport-facing entrypoint spec §6 names: Parse, Search, and
// HealthCheck. Everything else in this module (normalize, hotcache,
// matcher, attributes, semanticcache, parser, filterbuilder, pgstore,
// retrieval) is an internal collaborator Core wires together, following
// the teacher's runtime.Runtime constructor-with-Options-struct shape
// (runtime/runtime.go's New(Options) with the same required-field
// validation style).
package searchcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukfinder/searchcore/attributes"
	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/eviction"
	"github.com/soukfinder/searchcore/filterbuilder"
	"github.com/soukfinder/searchcore/healthcheck"
	"github.com/soukfinder/searchcore/hotcache"
	"github.com/soukfinder/searchcore/internal/observe"
	"github.com/soukfinder/searchcore/internal/reqid"
	"github.com/soukfinder/searchcore/llm"
	"github.com/soukfinder/searchcore/parser"
	"github.com/soukfinder/searchcore/pgstore"
	"github.com/soukfinder/searchcore/resultcache"
	"github.com/soukfinder/searchcore/retrieval"
	"github.com/soukfinder/searchcore/semanticcache"
)

// Options wires a Core together from concrete collaborators, following the
// teacher's Options-struct convention.
type Options struct {
	// Required.
	Pool   *pgxpool.Pool
	Schema string
	Config Config

	// Embedder and LLMClient may be nil; Core then runs DB-only (Tier
	// 0/1 parsing, lexical-only retrieval), matching the
	// ErrLLMUnavailable/ErrEmbeddingUnavailable degradation in spec §7.
	Embedder  llm.Embedder
	LLMClient *llm.Client

	// Metrics is optional; DefaultMetrics() is used if nil.
	Metrics *observe.Metrics
}

// Core is searchcore's single entrypoint, exposing exactly the
// transport-facing API spec §6 names.
type Core struct {
	cfg Config

	store   *pgstore.Store
	hot     *hotcache.HotCache
	parser  *parser.TieredParser
	orch    *retrieval.Orchestrator
	evictor *eviction.Runner
	metrics *observe.Metrics
}

// New constructs a Core. It does not start any background loop;
// StartBackgroundJobs does that.
func New(opts Options) (*Core, error) {
	if opts.Pool == nil {
		return nil, fmt.Errorf("searchcore: pool is required")
	}
	if strings.TrimSpace(opts.Schema) == "" {
		return nil, fmt.Errorf("searchcore: schema is required")
	}

	cfg := opts.Config.WithDefaults()
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}

	store, err := pgstore.New(opts.Pool, opts.Schema)
	if err != nil {
		return nil, fmt.Errorf("searchcore: %w", err)
	}

	hot := hotcache.New(store, cfg.HotCacheTTL, cfg.HotCacheTopNCategories)

	var semCache *semanticcache.Cache
	if opts.Embedder != nil {
		semCache = semanticcache.New(opts.Embedder, store, cfg.SemanticCacheSimilarityThreshold)
	}

	tp := parser.New(
		parser.Options{
			Tier1ConfidenceThreshold: cfg.Tier1ConfidenceThreshold,
			ExactCacheTTL:            cfg.ExactCacheTTL,
			Tier3Timeout:             cfg.Tier3Timeout,
			Tier4Timeout:             cfg.Tier4Timeout,
		},
		hot, store, store, store, attributes.Extract, semCache, opts.LLMClient,
	).WithMetrics(metrics)

	resCache := resultcache.New(5 * time.Minute)

	// A nil *llm.Client boxed into the retrieval.Validator interface would
	// be a non-nil interface wrapping a nil pointer, so ValidateCategory
	// would be called instead of skipped. Only pass a Validator when there
	// is a real client behind it.
	var validator retrieval.Validator
	if opts.LLMClient != nil {
		validator = opts.LLMClient
	}

	orch := retrieval.New(
		retrieval.Options{
			CategoryConfidenceGateLow:  cfg.CategoryConfidenceGateLow,
			CategoryConfidenceGateHigh: cfg.CategoryConfidenceGateHigh,
			VectorMethodMinConfidence:  cfg.VectorMethodMinConfidence,
		},
		tp, store, store, store, store, opts.Embedder, validator, resCache,
	).WithMetrics(metrics)

	return &Core{
		cfg:     cfg,
		store:   store,
		hot:     hot,
		parser:  tp,
		orch:    orch,
		evictor: eviction.New(store, eviction.Options{}),
		metrics: metrics,
	}, nil
}

// Initialize populates the HotCache for the first time. Call once before
// serving traffic.
func (c *Core) Initialize(ctx context.Context) error {
	return c.hot.Initialize(ctx)
}

// StartBackgroundJobs launches the HotCache refresh check and the
// semantic-cache eviction sweep as goroutines bound to ctx. Both are
// best-effort background loops (spec §4.2, §9's eviction-job supplement);
// neither failure path can fail a request.
func (c *Core) StartBackgroundJobs(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.cfg.HotCacheTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.hot.RefreshIfStale(ctx)
			}
		}
	}()
	go c.evictor.Run(ctx)
}

// Parse implements spec §6's parse(utterance, language) → Intent.
func (c *Core) Parse(ctx context.Context, utterance, language string) (catalog.Intent, error) {
	if err := validateUtterance(utterance, language); err != nil {
		return catalog.Intent{}, err
	}
	ctx, _ = reqid.New(ctx)
	intent, err := c.parser.Parse(ctx, utterance, language)
	if err != nil {
		if errors.Is(err, parser.ErrInvalidInput) {
			return catalog.Intent{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return catalog.Intent{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return catalog.Intent{}, fmt.Errorf("searchcore: %w", err)
	}
	return intent, nil
}

// SearchParams is spec §6's search(params) input shape.
type SearchParams struct {
	Query    string
	Language string
	Page     int
	Limit    int
	Filters  filterbuilder.Extras
	UserID   string
}

// Search implements spec §6's search(params) → ResultPage.
func (c *Core) Search(ctx context.Context, params SearchParams) (catalog.ResultPage, error) {
	if err := validateUtterance(params.Query, params.Language); err != nil {
		return catalog.ResultPage{}, err
	}
	ctx, _ = reqid.New(ctx)
	page, err := c.orch.Search(ctx, retrieval.Params{
		Query:    params.Query,
		Language: params.Language,
		Page:     params.Page,
		Limit:    params.Limit,
		Filters:  params.Filters,
		UserID:   params.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, retrieval.ErrParseUnresolved):
			return catalog.ResultPage{}, fmt.Errorf("%w: %v", ErrParseUnresolved, err)
		case errors.Is(err, retrieval.ErrStoreUnavailable):
			return catalog.ResultPage{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		case errors.Is(err, retrieval.ErrInvariantViolation):
			return catalog.ResultPage{}, fmt.Errorf("%w: %v", ErrInternalInvariantViolation, err)
		case errors.Is(err, context.DeadlineExceeded):
			return catalog.ResultPage{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return catalog.ResultPage{}, fmt.Errorf("searchcore: %w", err)
	}
	return page, nil
}

// HealthCheck implements spec §6's healthCheck() → {status, components}.
func (c *Core) HealthCheck(ctx context.Context) healthcheck.Report {
	checkers := []healthcheck.Checker{
		{Name: "store", Check: c.store.Ping},
		{Name: "hotcache", Check: func(ctx context.Context) error {
			if c.hot.Snapshot() == nil {
				return fmt.Errorf("hotcache not yet initialized")
			}
			return nil
		}},
	}
	return healthcheck.Run(ctx, checkers...)
}

func validateUtterance(utterance, language string) error {
	runeLen := len([]rune(utterance))
	if runeLen < 2 || runeLen > 500 {
		return fmt.Errorf("%w: utterance length %d", ErrInvalidInput, runeLen)
	}
	if language != "ar" && language != "en" {
		return fmt.Errorf("%w: unknown language %q", ErrInvalidInput, language)
	}
	return nil
}
