package mcp

import (
	"context"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result   *domain.QueryResult
	err      error
	gotData  []byte
	gotOpts  domain.QueryOptions
	queryHit int
}

func (m *mockQueryService) Query(_ context.Context, data []byte, opts domain.QueryOptions) (*domain.QueryResult, error) {
	m.queryHit++
	m.gotData = data
	m.gotOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.QueryResult{Outcome: domain.OutcomeNoCandidates}, nil
	}
	return m.result, nil
}

// mockIndexer is a mock implementation of driving.Indexer.
type mockIndexer struct {
	report  *domain.IndexReport
	runs    []domain.IndexReport
	err     error
	gotPath string
}

func (m *mockIndexer) Index(_ context.Context, libraryPath string) (*domain.IndexReport, error) {
	m.gotPath = libraryPath
	return m.report, m.err
}

func (m *mockIndexer) Status() domain.IndexStatus {
	return domain.IndexStatus{}
}

func (m *mockIndexer) History(_ context.Context, _ int) ([]domain.IndexReport, error) {
	return m.runs, m.err
}

// mockInspector is a mock implementation of driving.IndexInspector.
type mockInspector struct {
	stats      *domain.IndexStats
	err        error
	gotPreview int
}

func (m *mockInspector) Stats(_ context.Context, preview int) (*domain.IndexStats, error) {
	m.gotPreview = preview
	return m.stats, m.err
}
