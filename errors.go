package searchcore

import "errors"

// Sentinel error kinds per spec §7. Callers use errors.Is to classify a
// failure returned by Core.Parse / Core.Search.
var (
	// ErrInvalidInput covers an empty, too-short, too-long (>500 chars), or
	// unknown-language utterance. Surfaced to the caller verbatim.
	ErrInvalidInput = errors.New("searchcore: invalid input")

	// ErrStoreUnavailable covers a connection or statement error from the
	// relational store. Matchers degrade by returning nil; retrievers
	// propagate this after exhausting fallback paths.
	ErrStoreUnavailable = errors.New("searchcore: store unavailable")

	// ErrLLMUnavailable covers a provider error or deadline on a Tier 3/4
	// call. Tier 3/4 become no-ops and Tier 1's best-effort intent is kept
	// with confidence scaled down.
	ErrLLMUnavailable = errors.New("searchcore: llm unavailable")

	// ErrEmbeddingUnavailable is like ErrLLMUnavailable but also disables
	// the semantic cache for the current call.
	ErrEmbeddingUnavailable = errors.New("searchcore: embedding unavailable")

	// ErrParseUnresolved means the parser produced an intent with neither a
	// category nor keywords. The orchestrator must not issue retrieval
	// calls when it sees this.
	ErrParseUnresolved = errors.New("searchcore: could not understand query")

	// ErrTimeout means the request deadline expired somewhere in the
	// pipeline.
	ErrTimeout = errors.New("searchcore: timeout")

	// ErrInternalInvariantViolation is fatal: an invariant the code relies
	// on (e.g. a resolvable neighborhood->city reference) did not hold.
	ErrInternalInvariantViolation = errors.New("searchcore: internal invariant violation")
)
