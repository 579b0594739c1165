package cli

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/sceneseek/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/services"
)

const testHome = "/home/user/.sceneseek"

// mockIndexer is a mock implementation of driving.Indexer.
type mockIndexer struct {
	mu      sync.Mutex
	report  *domain.IndexReport
	err     error
	runs    []domain.IndexReport
	status  domain.IndexStatus
	delay   time.Duration
	gotPath string
}

func (m *mockIndexer) Index(ctx context.Context, libraryPath string) (*domain.IndexReport, error) {
	m.mu.Lock()
	m.gotPath = libraryPath
	m.mu.Unlock()
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.report, m.err
}

func (m *mockIndexer) Status() domain.IndexStatus {
	return m.status
}

func (m *mockIndexer) History(_ context.Context, limit int) ([]domain.IndexReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *mockIndexer) path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gotPath
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result  *domain.QueryResult
	err     error
	gotData []byte
	gotOpts domain.QueryOptions
}

func (m *mockQueryService) Query(_ context.Context, data []byte, opts domain.QueryOptions) (*domain.QueryResult, error) {
	m.gotData = data
	m.gotOpts = opts
	return m.result, m.err
}

// mockInspector is a mock implementation of driving.IndexInspector.
type mockInspector struct {
	stats *domain.IndexStats
	err   error
}

func (m *mockInspector) Stats(_ context.Context, _ int) (*domain.IndexStats, error) {
	return m.stats, m.err
}

// mockSnapshotService is a mock implementation of driving.SnapshotService.
type mockSnapshotService struct {
	err    error
	pushes int
	pulls  int
}

func (m *mockSnapshotService) Push(context.Context) error {
	m.pushes++
	return m.err
}

func (m *mockSnapshotService) Pull(context.Context) error {
	m.pulls++
	return m.err
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	indexer   *mockIndexer
	query     *mockQueryService
	inspector *mockInspector
	snapshot  *mockSnapshotService
	settings  *services.SettingsService
}

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		indexer: &mockIndexer{report: &domain.IndexReport{RunID: "run-1"}},
		query: &mockQueryService{result: &domain.QueryResult{
			Outcome: domain.OutcomeRanked,
			Matches: []domain.SceneMatch{
				{VideoID: "beach.mp4", Timestamp: 75.5, Score: 15, ANNDistance: 0.125},
			},
			CandidatesConsidered: 2,
			CandidatesScored:     2,
		}},
		inspector: &mockInspector{stats: &domain.IndexStats{}},
		snapshot:  &mockSnapshotService{},
		settings:  services.NewSettingsService(memory.NewConfigStore(), testHome),
	}
	SetServices(Services{
		Indexer:     ts.indexer,
		Query:       ts.query,
		Inspector:   ts.inspector,
		Snapshot:    ts.snapshot,
		Settings:    ts.settings,
		LibraryPath: testHome + "/videos",
	})
	return ts, func() {
		SetServices(Services{})
	}
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue) //nolint:errcheck
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, new(bytes.Buffer), args...)
}

// executeWithInput runs the root command reading stdin from in.
func executeWithInput(t *testing.T, in io.Reader, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
