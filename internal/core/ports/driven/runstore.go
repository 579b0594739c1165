package driven

import (
	"context"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

// IndexRunStore persists the history of indexing runs.
type IndexRunStore interface {
	// RecordRun stores the report of a finished run.
	RecordRun(ctx context.Context, report *domain.IndexReport) error

	// ListRuns returns recent runs, most recent first.
	ListRuns(ctx context.Context, limit int) ([]domain.IndexReport, error)
}
