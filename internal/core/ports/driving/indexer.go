package driving

import (
	"context"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

// Indexer incrementally indexes a video library.
type Indexer interface {
	// Index processes every library video not yet catalogued.
	// An empty libraryPath uses the configured library; any other path must
	// lie inside it (domain.ErrInvalidInput otherwise). Video ids are always
	// relative to the configured library.
	// Returns domain.ErrIndexingInProgress if a run is already active.
	Index(ctx context.Context, libraryPath string) (*domain.IndexReport, error)

	// Status returns the live state of the current run.
	Status() domain.IndexStatus

	// History returns recent runs, most recent first.
	History(ctx context.Context, limit int) ([]domain.IndexReport, error)
}
