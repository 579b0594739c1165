package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
	"github.com/custodia-labs/sceneseek/internal/logger"
)

// Snapshot is an immutable published index and catalog pair.
// Readers may use it concurrently; it is never mutated after publication.
type Snapshot struct {
	Index   driven.VectorIndex
	Catalog driven.SceneCatalog
}

// IndexHandle holds the snapshot visible to queries.
// Publication swaps a single pointer so readers never see a half-built index.
type IndexHandle struct {
	repo    driven.IndexRepository
	current atomic.Pointer[Snapshot]
}

// NewIndexHandle creates a handle that lazily loads from repo.
func NewIndexHandle(repo driven.IndexRepository) *IndexHandle {
	return &IndexHandle{repo: repo}
}

// Current returns the published snapshot, or nil.
func (h *IndexHandle) Current() *Snapshot {
	return h.current.Load()
}

// Publish makes snap visible to queries.
func (h *IndexHandle) Publish(snap *Snapshot) {
	h.current.Store(snap)
}

// Reload reads the persisted pair, reconciles it and publishes it.
// Returns domain.ErrNotFound when nothing has been persisted yet.
func (h *IndexHandle) Reload(ctx context.Context) (*Snapshot, error) {
	idx, cat, err := h.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := reconcile(idx, cat); err != nil {
		return nil, err
	}

	snap := &Snapshot{Index: idx, Catalog: cat}
	h.Publish(snap)
	logger.Debug("Loaded index: %d vectors, %d scenes", idx.Count(), cat.Len())
	return snap, nil
}

// Ready returns the published snapshot, loading it from disk when none is
// published. Any failure to obtain a usable index wraps domain.ErrIndexNotReady
// together with its cause.
func (h *IndexHandle) Ready(ctx context.Context) (*Snapshot, error) {
	if snap := h.Current(); snap != nil {
		return snap, nil
	}
	snap, err := h.Reload(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexNotReady, err)
	}
	return snap, nil
}

// reconcile restores the length invariant after an interrupted write.
// The index is always persisted before the catalog, so a longer index holds
// orphaned vectors from a run whose catalog never landed; they are dropped and
// their videos are reprocessed on the next run. A longer catalog cannot come
// from an interrupted run and means the files are out of sync.
func reconcile(idx driven.VectorIndex, cat driven.SceneCatalog) error {
	switch {
	case idx.Count() > cat.Len():
		logger.Warn("Vector index has %d vectors but catalog has %d scenes; dropping orphaned vectors",
			idx.Count(), cat.Len())
		if err := idx.Truncate(cat.Len()); err != nil {
			return fmt.Errorf("truncate orphaned vectors: %w", err)
		}
	case cat.Len() > idx.Count():
		return fmt.Errorf("%w: catalog has %d scenes, index has %d vectors",
			domain.ErrCatalogDesync, cat.Len(), idx.Count())
	}
	return nil
}
