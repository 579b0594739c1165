package driving

import (
	"context"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

// IndexInspector reports on the published index.
type IndexInspector interface {
	// Stats describes the index with a preview of the first preview vectors.
	Stats(ctx context.Context, preview int) (*domain.IndexStats, error)
}
