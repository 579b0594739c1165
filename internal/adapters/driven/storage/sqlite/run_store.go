package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// runStore implements driven.IndexRunStore.
type runStore struct {
	store *Store
}

var _ driven.IndexRunStore = (*runStore)(nil)

// RecordRun stores the report of a finished run. Recording the same run
// twice replaces the earlier row.
func (s *runStore) RecordRun(ctx context.Context, report *domain.IndexReport) error {
	if report == nil || report.RunID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO index_runs (
			run_id, started_at, ended_at,
			videos_discovered, videos_to_process, videos_processed, videos_failed,
			scenes_skipped, new_scenes, total_scenes, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.RunID, formatTime(report.StartedAt), formatTime(report.EndedAt),
		report.VideosDiscovered, report.VideosToProcess, report.VideosProcessed, report.VideosFailed,
		report.ScenesSkipped, report.NewScenes, report.TotalScenes, nullString(report.Error))
	if err != nil {
		return fmt.Errorf("recording index run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, most recent first.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.IndexReport, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, started_at, ended_at,
			videos_discovered, videos_to_process, videos_processed, videos_failed,
			scenes_skipped, new_scenes, total_scenes, error
		FROM index_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying index runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IndexReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.IndexReport
		var startedAt, endedAt string
		var errMsg sql.NullString
		if err := rows.Scan(&r.RunID, &startedAt, &endedAt,
			&r.VideosDiscovered, &r.VideosToProcess, &r.VideosProcessed, &r.VideosFailed,
			&r.ScenesSkipped, &r.NewScenes, &r.TotalScenes, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning index run: %w", err)
		}
		r.StartedAt = parseTime(startedAt)
		r.EndedAt = parseTime(endedAt)
		r.Error = errMsg.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index runs: %w", err)
	}
	return runs, nil
}
