// Package indexfile persists the vector index and scene catalog as a pair of
// files in the data directory.
package indexfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sceneseek/internal/adapters/driven/catalog/jsonfile"
	"github.com/custodia-labs/sceneseek/internal/adapters/driven/storage/atomicfile"
	"github.com/custodia-labs/sceneseek/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// Ensure Repository implements the interface.
var _ driven.IndexRepository = (*Repository)(nil)

// Repository stores index.ssvi and catalog.json under one directory.
type Repository struct {
	indexPath   string
	catalogPath string
}

// NewRepository creates a repository rooted at dataDir.
func NewRepository(dataDir string) *Repository {
	return &Repository{
		indexPath:   filepath.Join(dataDir, domain.IndexFileName),
		catalogPath: filepath.Join(dataDir, domain.CatalogFileName),
	}
}

// Load reads both files. A single missing file loads as empty.
func (r *Repository) Load(ctx context.Context) (driven.VectorIndex, driven.SceneCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	idx, idxErr := flat.Load(r.indexPath)
	cat, catErr := jsonfile.Load(r.catalogPath)

	idxMissing := errors.Is(idxErr, domain.ErrNotFound)
	catMissing := errors.Is(catErr, domain.ErrNotFound)
	if idxMissing && catMissing {
		return nil, nil, fmt.Errorf("load index: %w", domain.ErrNotFound)
	}
	if idxErr != nil && !idxMissing {
		return nil, nil, fmt.Errorf("load vector index: %w", idxErr)
	}
	if catErr != nil && !catMissing {
		return nil, nil, fmt.Errorf("load scene catalog: %w", catErr)
	}

	if idxMissing {
		idx = flat.New(0)
	}
	if catMissing {
		cat = jsonfile.New()
	}
	return idx, cat, nil
}

// Empty returns an empty index and catalog.
func (r *Repository) Empty() (driven.VectorIndex, driven.SceneCatalog) {
	return flat.New(0), jsonfile.New()
}

// Save writes the index, then the catalog.
func (r *Repository) Save(ctx context.Context, index driven.VectorIndex, catalog driven.SceneCatalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fi, err := flat.FromVectorIndex(index)
	if err != nil {
		return fmt.Errorf("persist vector index: %w", err)
	}
	if err := fi.Save(r.indexPath); err != nil {
		return fmt.Errorf("persist vector index: %w", err)
	}
	if err := jsonfile.Save(r.catalogPath, catalog); err != nil {
		return fmt.Errorf("persist scene catalog: %w", err)
	}
	return nil
}

// Import validates the pair at indexPath/catalogPath and moves it into place,
// index first. An index longer than its catalog is accepted and truncated on
// the next load; a longer catalog is rejected.
func (r *Repository) Import(ctx context.Context, indexPath, catalogPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	idx, err := flat.Load(indexPath)
	if err != nil {
		return fmt.Errorf("import vector index: %w", err)
	}
	cat, err := jsonfile.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("import scene catalog: %w", err)
	}
	if cat.Len() > idx.Count() {
		return fmt.Errorf("import: %w: catalog has %d scenes, index has %d vectors",
			domain.ErrCatalogDesync, cat.Len(), idx.Count())
	}

	if err := os.MkdirAll(filepath.Dir(r.indexPath), 0700); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := atomicfile.ReplaceFile(indexPath, r.indexPath); err != nil {
		return fmt.Errorf("import vector index: %w", err)
	}
	if err := atomicfile.ReplaceFile(catalogPath, r.catalogPath); err != nil {
		return fmt.Errorf("import scene catalog: %w", err)
	}
	return nil
}

// IndexPath returns the vector index file path.
func (r *Repository) IndexPath() string {
	return r.indexPath
}

// CatalogPath returns the scene catalog file path.
func (r *Repository) CatalogPath() string {
	return r.catalogPath
}
