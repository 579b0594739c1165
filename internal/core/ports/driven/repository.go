package driven

import "context"

// IndexRepository persists the vector index and scene catalog pair.
type IndexRepository interface {
	// Load reads the persisted pair. A missing file loads as empty; when both
	// are missing domain.ErrNotFound is returned. Files that fail validation
	// return domain.ErrIndexCorrupt. Load does not reconcile lengths.
	Load(ctx context.Context) (VectorIndex, SceneCatalog, error)

	// Empty returns a fresh, empty pair.
	Empty() (VectorIndex, SceneCatalog)

	// Save persists the index, then the catalog. Each file is replaced
	// atomically so readers never observe a partial write.
	Save(ctx context.Context, index VectorIndex, catalog SceneCatalog) error

	// IndexPath returns the vector index file location.
	IndexPath() string

	// CatalogPath returns the scene catalog file location.
	CatalogPath() string
}
