package retrieval

import "errors"

// Sentinels mirroring the root package's error kinds, declared locally
// because retrieval cannot import the root searchcore package without a
// cycle (Core wires retrieval.Orchestrator). Core.Search re-wraps each into
// its root counterpart with errors.Is-compatible chaining.
var (
	// ErrParseUnresolved means the parsed intent carried neither a category
	// nor keywords; no retrieval call is issued.
	ErrParseUnresolved = errors.New("retrieval: could not understand query")

	// ErrStoreUnavailable marks a retriever store failure that survived
	// every fallback path.
	ErrStoreUnavailable = errors.New("retrieval: store unavailable")

	// ErrInvariantViolation marks a broken catalog invariant, e.g. a
	// neighborhood whose parent city cannot be resolved.
	ErrInvariantViolation = errors.New("retrieval: internal invariant violation")
)
