package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Index Errors.

	// ErrIndexNotReady indicates there is no usable index yet.
	// Recoverable by running an indexing pass.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrDimensionMismatch indicates a vector whose dimension differs from the index.
	// This signals provider or configuration drift and is never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrOutOfRange indicates a sequence index outside the catalog.
	ErrOutOfRange = errors.New("sequence index out of range")

	// ErrCatalogDesync indicates the scene catalog and vector index disagree.
	// The persisted state is corrupted and must be rebuilt.
	ErrCatalogDesync = errors.New("scene catalog out of sync with vector index")

	// ErrIndexCorrupt indicates a persisted index or catalog file failed validation.
	ErrIndexCorrupt = errors.New("index data corrupt")

	// ErrIndexingInProgress indicates an indexing run is already active.
	ErrIndexingInProgress = errors.New("indexing in progress")

	// Media Errors.

	// ErrDecode indicates an image or frame could not be decoded.
	ErrDecode = errors.New("decode error")

	// ErrFrameUnavailable indicates no frame exists at the requested position.
	ErrFrameUnavailable = errors.New("frame unavailable")

	// Provider Errors.

	// ErrProviderUnavailable indicates an inference or media backend cannot be reached.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrSnapshotUnavailable indicates remote snapshot storage is not configured.
	ErrSnapshotUnavailable = errors.New("snapshot storage unavailable")
)
