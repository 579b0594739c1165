package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driving"
)

// Ensure InspectService implements the interface.
var _ driving.IndexInspector = (*InspectService)(nil)

// InspectService reports on the published index.
type InspectService struct {
	handle *IndexHandle
}

// NewInspectService creates a new inspect service.
func NewInspectService(handle *IndexHandle) *InspectService {
	return &InspectService{handle: handle}
}

// Stats describes the index. A missing index is reported as not ready
// rather than as an error; corrupted state is surfaced.
func (s *InspectService) Stats(ctx context.Context, preview int) (*domain.IndexStats, error) {
	snap, err := s.handle.Ready(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.IndexStats{}, nil
		}
		return nil, err
	}

	stats := &domain.IndexStats{
		Ready:     true,
		Dimension: snap.Index.Dimension(),
		Vectors:   snap.Index.Count(),
		Scenes:    snap.Catalog.Len(),
		Videos:    len(snap.Catalog.VideoIDs()),
	}

	n := min(preview, stats.Vectors)
	for i := 0; i < n; i++ {
		seq := uint64(i)
		vec, err := snap.Index.Reconstruct(seq)
		if err != nil {
			return nil, fmt.Errorf("reconstruct %d: %w", seq, err)
		}
		rec, err := snap.Catalog.Get(seq)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCatalogDesync, err)
		}
		if len(vec) > domain.PreviewComponents {
			vec = vec[:domain.PreviewComponents]
		}
		stats.Preview = append(stats.Preview, domain.VectorPreview{
			SequenceIndex: seq,
			VideoID:       rec.VideoID,
			Timestamp:     rec.Timestamp,
			Components:    vec,
		})
	}
	return stats, nil
}
