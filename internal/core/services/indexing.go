package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driving"
	"github.com/custodia-labs/sceneseek/internal/logger"
)

// Ensure IndexingPipeline implements the interface.
var _ driving.Indexer = (*IndexingPipeline)(nil)

// IndexingConfig configures the indexing pipeline.
type IndexingConfig struct {
	// LibraryPath is used when Index is called without a path.
	LibraryPath string

	// Workers bounds the number of videos processed concurrently.
	Workers int

	// FrameSize is the square edge frames are resized to before embedding.
	// Zero disables resizing.
	FrameSize int
}

// IndexingPipeline discovers unindexed videos, extracts one embedding per
// scene and appends them to the vector index and scene catalog.
type IndexingPipeline struct {
	handle   *IndexHandle
	repo     driven.IndexRepository
	library  driven.VideoLibrary
	detector driven.SceneDetector
	frames   driven.FrameSource
	embedder driven.EmbeddingProvider
	runs     driven.IndexRunStore
	config   IndexingConfig

	// runMu serialises runs and snapshot transfers.
	runMu sync.Mutex

	// Status tracking
	statusMu        sync.RWMutex
	running         bool
	runID           string
	startedAt       time.Time
	videosTotal     int
	videosDone      atomic.Int64
	scenesExtracted atomic.Int64
}

// NewIndexingPipeline creates a new indexing pipeline.
// runs is optional - if nil, run history is not recorded.
func NewIndexingPipeline(
	handle *IndexHandle,
	repo driven.IndexRepository,
	library driven.VideoLibrary,
	detector driven.SceneDetector,
	frames driven.FrameSource,
	embedder driven.EmbeddingProvider,
	runs driven.IndexRunStore,
	config IndexingConfig,
) *IndexingPipeline {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &IndexingPipeline{
		handle:   handle,
		repo:     repo,
		library:  library,
		detector: detector,
		frames:   frames,
		embedder: embedder,
		runs:     runs,
		config:   config,
	}
}

// videoResult is the private output slot of one video worker.
type videoResult struct {
	embeddings [][]float32
	timestamps []float64
	skipped    int
	err        error
}

// Index runs one incremental indexing pass over the library.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (p *IndexingPipeline) Index(ctx context.Context, libraryPath string) (*domain.IndexReport, error) {
	if !p.runMu.TryLock() {
		return nil, domain.ErrIndexingInProgress
	}
	defer p.runMu.Unlock()

	report := &domain.IndexReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	p.beginStatus(report)
	defer p.endStatus()

	logger.Section("Indexing")
	scope, err := p.scope(libraryPath)
	if err != nil {
		return p.abort(ctx, report, err)
	}
	logger.Info("Starting indexing run %s for %s", report.RunID, scope.dir)

	// 1. Load the current index: published snapshot, else disk, else empty
	base, err := p.baseSnapshot(ctx)
	if err != nil {
		return p.abort(ctx, report, fmt.Errorf("load index: %w", err))
	}

	// 2. Discover videos and subtract the catalogued ones
	videos, err := p.discover(ctx, scope)
	if err != nil {
		return p.abort(ctx, report, fmt.Errorf("discover videos: %w", err))
	}
	report.VideosDiscovered = len(videos)

	catalogued := base.Catalog.VideoIDs()
	toProcess := make([]domain.Video, 0, len(videos))
	for _, v := range videos {
		if _, ok := catalogued[v.ID]; !ok {
			toProcess = append(toProcess, v)
		}
	}
	sort.Slice(toProcess, func(i, j int) bool { return toProcess[i].ID < toProcess[j].ID })
	report.VideosToProcess = len(toProcess)
	report.TotalScenes = base.Catalog.Len()

	// 3. Nothing to do
	if len(toProcess) == 0 {
		logger.Info("No new videos to index (%d discovered, all catalogued)", len(videos))
		return p.finish(ctx, report), nil
	}
	// A sidecar that is down would fail every video one by one
	if hc, ok := p.embedder.(driven.HealthChecker); ok {
		if err := hc.Ping(ctx); err != nil {
			return p.abort(ctx, report, fmt.Errorf("embedding provider: %w", err))
		}
	}
	p.setVideosTotal(len(toProcess))
	logger.Info("Indexing %d new videos with %d workers", len(toProcess), p.config.Workers)

	// 4. Process videos concurrently into private slots
	results, err := p.processVideos(ctx, toProcess)
	if err != nil {
		return p.abort(ctx, report, fmt.Errorf("process videos: %w", err))
	}

	// 5. Merge in video id order, scenes in segment order
	var vectors [][]float32
	var pending []domain.SceneRecord
	for i, res := range results {
		video := toProcess[i]
		report.ScenesSkipped += res.skipped
		if res.err != nil {
			report.VideosFailed++
			logger.Warn("Skipping video %s: %v", video.ID, res.err)
			continue
		}
		report.VideosProcessed++
		for j, emb := range res.embeddings {
			vectors = append(vectors, emb)
			pending = append(pending, domain.SceneRecord{VideoID: video.ID, Timestamp: res.timestamps[j]})
		}
	}

	// 6. All videos failed or produced no scenes
	if len(vectors) == 0 {
		logger.Info("No scenes extracted from %d videos (%d failed)", len(toProcess), report.VideosFailed)
		return p.finish(ctx, report), nil
	}

	// 7. Append to copies of the current pair
	index := base.Index.Clone()
	catalog := base.Catalog.Clone()

	first, err := index.Append(vectors)
	if err != nil {
		return p.abort(ctx, report, fmt.Errorf("append vectors: %w", err))
	}
	for i := range pending {
		pending[i].SequenceIndex = first + uint64(i)
	}
	if err := catalog.Append(pending); err != nil {
		return p.abort(ctx, report, fmt.Errorf("append scenes: %w", err))
	}

	// 8. Persist index then catalog, then publish
	if err := p.repo.Save(ctx, index, catalog); err != nil {
		return p.abort(ctx, report, err)
	}
	p.handle.Publish(&Snapshot{Index: index, Catalog: catalog})

	report.NewScenes = len(vectors)
	report.TotalScenes = catalog.Len()
	logger.Info("Indexed %d new scenes from %d videos (%d total)",
		report.NewScenes, report.VideosProcessed, report.TotalScenes)
	return p.finish(ctx, report), nil
}

// libraryScope is the directory an indexing run scans. Video ids are always
// relative to the library root, so prefix maps ids found under dir back to it.
type libraryScope struct {
	dir    string
	prefix string
	isRoot bool
}

// scope resolves libraryPath against the configured library root. An empty
// path is the root itself; a path outside the root is rejected because its
// videos could not be resolved at query time.
func (p *IndexingPipeline) scope(libraryPath string) (libraryScope, error) {
	root := p.config.LibraryPath
	if root == "" {
		return libraryScope{}, fmt.Errorf("no library path configured: %w", domain.ErrInvalidInput)
	}
	if libraryPath == "" {
		libraryPath = root
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return libraryScope{}, fmt.Errorf("library %s: %w", root, err)
	}
	absDir, err := filepath.Abs(libraryPath)
	if err != nil {
		return libraryScope{}, fmt.Errorf("library %s: %w", libraryPath, err)
	}
	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil || !filepath.IsLocal(rel) {
		return libraryScope{}, fmt.Errorf("%s is outside the library %s: %w", libraryPath, root, domain.ErrInvalidInput)
	}
	if rel == "." {
		return libraryScope{dir: absRoot, isRoot: true}, nil
	}
	return libraryScope{dir: absDir, prefix: filepath.ToSlash(rel) + "/"}, nil
}

// discover lists the videos in scope with root-relative ids.
// A missing library root is created and indexed as empty.
func (p *IndexingPipeline) discover(ctx context.Context, scope libraryScope) ([]domain.Video, error) {
	videos, err := p.library.Discover(ctx, scope.dir)
	if errors.Is(err, domain.ErrNotFound) && scope.isRoot {
		if err := os.MkdirAll(scope.dir, 0o755); err != nil {
			return nil, fmt.Errorf("create library: %w", err)
		}
		logger.Info("Created empty library %s", scope.dir)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if scope.prefix != "" {
		for i := range videos {
			videos[i].ID = scope.prefix + videos[i].ID
		}
	}
	return videos, nil
}

// baseSnapshot returns the snapshot new scenes are appended to.
// A missing index starts empty; an unreadable one aborts the run.
func (p *IndexingPipeline) baseSnapshot(ctx context.Context) (*Snapshot, error) {
	if snap := p.handle.Current(); snap != nil {
		return snap, nil
	}
	snap, err := p.handle.Reload(ctx)
	if err == nil {
		return snap, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		idx, cat := p.repo.Empty()
		return &Snapshot{Index: idx, Catalog: cat}, nil
	}
	return nil, err
}

// processVideos runs the per-video workers. Cancellation stops new work from
// starting and discards every result.
func (p *IndexingPipeline) processVideos(ctx context.Context, videos []domain.Video) ([]videoResult, error) {
	results := make([]videoResult, len(videos))

	var g errgroup.Group
	g.SetLimit(p.config.Workers)

	for i := range videos {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = p.processVideo(ctx, videos[i])
			p.videosDone.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// processVideo extracts one embedding per scene of a single video.
// Undecodable frames skip the scene; any other failure fails the video.
func (p *IndexingPipeline) processVideo(ctx context.Context, video domain.Video) videoResult {
	var res videoResult

	segments, err := p.detector.Detect(ctx, video.Path)
	if err != nil {
		res.err = fmt.Errorf("detect scenes: %w", err)
		return res
	}
	logger.Debug("Video %s: %d scenes", video.ID, len(segments))

	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			res.err = err
			return res
		}

		ts := seg.Midpoint()
		frame, err := p.frames.FrameAt(ctx, video.Path, ts)
		if err != nil {
			if skippableFrameError(err) {
				res.skipped++
				logger.Warn("Skipping scene %d of %s at %s: %v", i, video.ID, domain.FormatTimestamp(ts), err)
				continue
			}
			res.err = fmt.Errorf("decode frame at %s: %w", domain.FormatTimestamp(ts), err)
			return res
		}

		emb, err := p.embedder.Embed(ctx, resizeFrame(frame, p.config.FrameSize))
		if err != nil {
			if errors.Is(err, domain.ErrDecode) {
				res.skipped++
				logger.Warn("Skipping scene %d of %s at %s: %v", i, video.ID, domain.FormatTimestamp(ts), err)
				continue
			}
			res.err = fmt.Errorf("embed frame at %s: %w", domain.FormatTimestamp(ts), err)
			return res
		}

		res.embeddings = append(res.embeddings, emb)
		res.timestamps = append(res.timestamps, ts)
		p.scenesExtracted.Add(1)
	}
	return res
}

func skippableFrameError(err error) bool {
	return errors.Is(err, domain.ErrDecode) || errors.Is(err, domain.ErrFrameUnavailable)
}

// resizeFrame scales img to a size x size square.
func resizeFrame(img image.Image, size int) image.Image {
	if size <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// abort finalises a failed run.
func (p *IndexingPipeline) abort(ctx context.Context, report *domain.IndexReport, err error) (*domain.IndexReport, error) {
	report.Error = err.Error()
	logger.Error("Indexing run %s failed: %v", report.RunID, err)
	p.finish(ctx, report)
	return report, err
}

// finish stamps the report and records it in the run history.
func (p *IndexingPipeline) finish(ctx context.Context, report *domain.IndexReport) *domain.IndexReport {
	report.EndedAt = time.Now()
	if p.runs != nil {
		// Record even when the run was cancelled.
		if err := p.runs.RecordRun(context.WithoutCancel(ctx), report); err != nil {
			logger.Warn("Failed to record indexing run %s: %v", report.RunID, err)
		}
	}
	return report
}

// Exclusive runs fn while no indexing run can start.
// Returns domain.ErrIndexingInProgress if a run is active.
func (p *IndexingPipeline) Exclusive(fn func() error) error {
	if !p.runMu.TryLock() {
		return domain.ErrIndexingInProgress
	}
	defer p.runMu.Unlock()
	return fn()
}

// Status returns the live state of the current run.
func (p *IndexingPipeline) Status() domain.IndexStatus {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()

	return domain.IndexStatus{
		Running:         p.running,
		RunID:           p.runID,
		StartedAt:       p.startedAt,
		VideosTotal:     p.videosTotal,
		VideosDone:      int(p.videosDone.Load()),
		ScenesExtracted: int(p.scenesExtracted.Load()),
	}
}

// History returns recent runs, most recent first.
func (p *IndexingPipeline) History(ctx context.Context, limit int) ([]domain.IndexReport, error) {
	if p.runs == nil {
		return nil, nil
	}
	runs, err := p.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (p *IndexingPipeline) beginStatus(report *domain.IndexReport) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.running = true
	p.runID = report.RunID
	p.startedAt = report.StartedAt
	p.videosTotal = 0
	p.videosDone.Store(0)
	p.scenesExtracted.Store(0)
}

func (p *IndexingPipeline) setVideosTotal(n int) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.videosTotal = n
}

func (p *IndexingPipeline) endStatus() {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.running = false
}
