package domain

import "errors"

// Sentinel errors shared across the engine. Adapters and services wrap
// these with context; callers match with errors.Is.
var (
	// ErrInvalidQuery indicates the query failed validation (too long,
	// unsupported mode, malformed input).
	ErrInvalidQuery = errors.New("invalid query")

	// ErrFilterValidation indicates inconsistent filter values.
	ErrFilterValidation = errors.New("invalid filters")

	// ErrIndexUnavailable indicates no index snapshot has been built
	// or restored yet.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service could
	// not be reached or returned an error.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates an embedding's dimension differs
	// from the index's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrSearchTimeout indicates a retrieval channel exceeded its
	// deadline.
	ErrSearchTimeout = errors.New("search timed out")

	// ErrBuildInProgress indicates an index build is already running.
	ErrBuildInProgress = errors.New("index build already in progress")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")
)
