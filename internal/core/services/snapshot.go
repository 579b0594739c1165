package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driving"
	"github.com/custodia-labs/sceneseek/internal/logger"
)

// Ensure SnapshotService implements the interface.
var _ driving.SnapshotService = (*SnapshotService)(nil)

// SnapshotImporter validates downloaded index files and moves them into place.
type SnapshotImporter interface {
	// Import checks the pair at indexPath/catalogPath and atomically replaces
	// the persisted index, then the catalog.
	Import(ctx context.Context, indexPath, catalogPath string) error
}

// SnapshotService copies the persisted index to and from remote storage.
// Transfers hold the indexing lock so they never interleave with a run.
type SnapshotService struct {
	store    driven.SnapshotStore
	repo     driven.IndexRepository
	importer SnapshotImporter
	handle   *IndexHandle
	indexer  *IndexingPipeline
	prefix   string
}

// NewSnapshotService creates a new snapshot service.
// store is optional - if nil, every operation returns domain.ErrSnapshotUnavailable.
func NewSnapshotService(
	store driven.SnapshotStore,
	repo driven.IndexRepository,
	importer SnapshotImporter,
	handle *IndexHandle,
	indexer *IndexingPipeline,
	prefix string,
) *SnapshotService {
	return &SnapshotService{
		store:    store,
		repo:     repo,
		importer: importer,
		handle:   handle,
		indexer:  indexer,
		prefix:   prefix,
	}
}

func (s *SnapshotService) key(name string) string {
	return s.prefix + name
}

// Push uploads the index object first and the catalog last, so a reader of
// the bucket that sees the new catalog also sees its vectors.
func (s *SnapshotService) Push(ctx context.Context) error {
	if s.store == nil {
		return domain.ErrSnapshotUnavailable
	}
	return s.indexer.Exclusive(func() error {
		if _, err := os.Stat(s.repo.CatalogPath()); err != nil {
			return fmt.Errorf("push: %w: nothing indexed yet", domain.ErrIndexNotReady)
		}
		if err := s.store.Upload(ctx, s.key(domain.IndexFileName), s.repo.IndexPath()); err != nil {
			return fmt.Errorf("push index: %w", err)
		}
		if err := s.store.Upload(ctx, s.key(domain.CatalogFileName), s.repo.CatalogPath()); err != nil {
			return fmt.Errorf("push catalog: %w", err)
		}
		logger.Info("Pushed snapshot to %s", s.prefix)
		return nil
	})
}

// Pull downloads the remote pair into a staging directory next to the data
// files, validates it, moves it into place and republishes the index.
func (s *SnapshotService) Pull(ctx context.Context) error {
	if s.store == nil {
		return domain.ErrSnapshotUnavailable
	}
	return s.indexer.Exclusive(func() error {
		dataDir := filepath.Dir(s.repo.IndexPath())
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return fmt.Errorf("pull: %w", err)
		}
		staging, err := os.MkdirTemp(dataDir, ".pull-*")
		if err != nil {
			return fmt.Errorf("pull: %w", err)
		}
		defer os.RemoveAll(staging)

		indexTmp := filepath.Join(staging, domain.IndexFileName)
		catalogTmp := filepath.Join(staging, domain.CatalogFileName)
		// Catalog before index: a concurrent push can then only leave the
		// index ahead of the catalog, which Import recovers from.
		if err := s.store.Download(ctx, s.key(domain.CatalogFileName), catalogTmp); err != nil {
			return fmt.Errorf("pull catalog: %w", err)
		}
		if err := s.store.Download(ctx, s.key(domain.IndexFileName), indexTmp); err != nil {
			return fmt.Errorf("pull index: %w", err)
		}

		if err := s.importer.Import(ctx, indexTmp, catalogTmp); err != nil {
			return fmt.Errorf("pull: %w", err)
		}
		snap, err := s.handle.Reload(ctx)
		if err != nil {
			return fmt.Errorf("reload: %w", err)
		}
		logger.Info("Pulled snapshot from %s: %d scenes", s.prefix, snap.Catalog.Len())
		return nil
	})
}
