package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"time"

	// Query image decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driving"
	"github.com/custodia-labs/sceneseek/internal/logger"
)

// Ensure QueryPipeline implements the interface.
var _ driving.QueryService = (*QueryPipeline)(nil)

// QueryPipeline retrieves candidate scenes by embedding distance and
// reranks them by local feature matches.
type QueryPipeline struct {
	handle      *IndexHandle
	embedder    driven.EmbeddingProvider
	features    driven.LocalFeatureProvider
	frames      driven.FrameSource
	library     driven.VideoLibrary
	renderer    driven.FrameRenderer
	executor    *RerankExecutor
	libraryRoot string
}

// NewQueryPipeline creates a new query pipeline.
// renderer is optional - if nil, results carry no rendering.
func NewQueryPipeline(
	handle *IndexHandle,
	embedder driven.EmbeddingProvider,
	features driven.LocalFeatureProvider,
	frames driven.FrameSource,
	library driven.VideoLibrary,
	renderer driven.FrameRenderer,
	executor *RerankExecutor,
	libraryRoot string,
) *QueryPipeline {
	if executor == nil {
		executor = NewRerankExecutor(0)
	}
	return &QueryPipeline{
		handle:      handle,
		embedder:    embedder,
		features:    features,
		frames:      frames,
		library:     library,
		renderer:    renderer,
		executor:    executor,
		libraryRoot: libraryRoot,
	}
}

// Query finds the indexed scenes most similar to the encoded image.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (q *QueryPipeline) Query(ctx context.Context, imageData []byte, opts domain.QueryOptions) (*domain.QueryResult, error) {
	start := time.Now()
	opts = opts.WithDefaults()

	logger.Section("Query")
	logger.Debug("Options: top=%d candidates=%d min_matches=%d workers=%d",
		opts.TopN, opts.CandidateCount, opts.MinMatchCount, q.executor.Workers())

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("query image: %w: %v", domain.ErrDecode, err)
	}

	snap, err := q.handle.Ready(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.QueryResult{}
	defer func() { result.Took = time.Since(start) }()

	// Embedding requested
	embedding, err := q.embedder.Embed(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("embed query image: %w", err)
	}

	// Candidates retrieved
	k := min(opts.CandidateCount, snap.Index.Count())
	neighbors, err := snap.Index.Search(embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	result.CandidatesConsidered = len(neighbors)
	logger.Debug("Vector search returned %d candidates", len(neighbors))
	if len(neighbors) == 0 {
		result.Outcome = domain.OutcomeNoCandidates
		return result, nil
	}

	queryDesc, err := q.features.Extract(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("extract query features: %w", err)
	}
	logger.Debug("Query image has %d descriptors", queryDesc.Count())
	if queryDesc.Empty() {
		result.Outcome = domain.OutcomeNoMatch
		return result, nil
	}

	candidates := make([]domain.Candidate, len(neighbors))
	for i, n := range neighbors {
		rec, err := snap.Catalog.Get(n.SequenceIndex)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCatalogDesync, err)
		}
		candidates[i] = domain.Candidate{Scene: rec, ANNDistance: n.Distance}
	}

	// Reranking
	scored, err := q.executor.Run(ctx, candidates, func(ctx context.Context, c domain.Candidate) (int64, error) {
		frame, err := q.frameFor(ctx, c.Scene)
		if err != nil {
			return 0, err
		}
		desc, err := q.features.Extract(ctx, frame)
		if err != nil {
			return 0, fmt.Errorf("extract features: %w", err)
		}
		if desc.Empty() {
			return 0, errNoDescriptors
		}
		return int64(q.features.Match(queryDesc, desc)), nil
	})
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	result.CandidatesScored = len(scored)
	logger.Debug("Reranked %d of %d candidates", len(scored), len(candidates))

	// Ranked
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].RanksBefore(scored[j]) })

	survivors := scored[:0]
	for _, c := range scored {
		if c.RerankScore >= int64(opts.MinMatchCount) {
			survivors = append(survivors, c)
		}
	}
	if len(survivors) == 0 {
		result.Outcome = domain.OutcomeNoSurvivors
		return result, nil
	}
	if len(survivors) > opts.TopN {
		survivors = survivors[:opts.TopN]
	}

	result.Outcome = domain.OutcomeRanked
	result.Matches = make([]domain.SceneMatch, len(survivors))
	for i, c := range survivors {
		result.Matches[i] = domain.SceneMatch{
			VideoID:       c.Scene.VideoID,
			Timestamp:     c.Scene.Timestamp,
			Score:         c.RerankScore,
			ANNDistance:   c.ANNDistance,
			SequenceIndex: c.Scene.SequenceIndex,
		}
		if opts.Render {
			result.Matches[i].Rendering = q.render(ctx, c.Scene)
		}
	}

	logger.Info("Query matched %d scenes (best %s, score %d)",
		len(result.Matches), survivors[0].Scene, survivors[0].RerankScore)
	return result, nil
}

// errNoDescriptors excludes a candidate whose frame has no local features.
var errNoDescriptors = errors.New("no descriptors in scene frame")

// frameFor resolves and decodes the frame of a catalogued scene.
func (q *QueryPipeline) frameFor(ctx context.Context, scene domain.SceneRecord) (image.Image, error) {
	path, err := q.library.Resolve(q.libraryRoot, scene.VideoID)
	if err != nil {
		return nil, fmt.Errorf("resolve video: %w", err)
	}
	frame, err := q.frames.FrameAt(ctx, path, scene.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("frame at %s: %w", domain.FormatTimestamp(scene.Timestamp), err)
	}
	return frame, nil
}

// render returns a presentation of the scene frame, or "" on failure.
func (q *QueryPipeline) render(ctx context.Context, scene domain.SceneRecord) string {
	if q.renderer == nil {
		return ""
	}
	frame, err := q.frameFor(ctx, scene)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("Cannot render %s: %v", scene, err)
		}
		return ""
	}
	out, err := q.renderer.Render(frame)
	if err != nil {
		logger.Warn("Cannot render %s: %v", scene, err)
		return ""
	}
	return out
}
