package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for SceneSeek resources.
	uriScheme = "sceneseek://"

	indexURI = uriScheme + "index"
	runsURI  = uriScheme + "runs"

	// indexPreviewVectors is the number of vectors previewed by the index resource.
	indexPreviewVectors = 5

	// runHistoryLimit is the number of runs listed by the runs resource.
	runHistoryLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Inspector != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         indexURI,
			Name:        "index",
			Description: "Size, dimension and a preview of the published scene index",
			MIMEType:    "application/json",
		}, s.handleIndexResource)
	}

	if s.ports.Indexer != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         runsURI,
			Name:        "runs",
			Description: "Recent indexing runs, most recent first",
			MIMEType:    "application/json",
		}, s.handleRunsResource)
	}
}

type previewInfo struct {
	SequenceIndex uint64    `json:"sequence_index"`
	VideoID       string    `json:"video_id"`
	Timestamp     float64   `json:"timestamp"`
	Components    []float32 `json:"components"`
}

type indexInfo struct {
	Ready     bool          `json:"ready"`
	Dimension int           `json:"dimension"`
	Vectors   int           `json:"vectors"`
	Videos    int           `json:"videos"`
	Preview   []previewInfo `json:"preview"`
}

// handleIndexResource describes the published index.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Inspector.Stats(ctx, indexPreviewVectors)
	if err != nil {
		return nil, fmt.Errorf("inspecting index: %w", err)
	}

	info := indexInfo{
		Ready:     stats.Ready,
		Dimension: stats.Dimension,
		Vectors:   stats.Vectors,
		Videos:    stats.Videos,
		Preview:   make([]previewInfo, len(stats.Preview)),
	}
	for i, p := range stats.Preview {
		info.Preview[i] = previewInfo{
			SequenceIndex: p.SequenceIndex,
			VideoID:       p.VideoID,
			Timestamp:     p.Timestamp,
			Components:    p.Components,
		}
	}

	return jsonResource(req.Params.URI, info)
}

type runInfo struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	NewScenes   int       `json:"new_scenes"`
	TotalScenes int       `json:"total_scenes"`
	Failed      int       `json:"videos_failed"`
	Error       string    `json:"error,omitempty"`
}

// handleRunsResource lists recent indexing runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runs, err := s.ports.Indexer.History(ctx, runHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	infos := make([]runInfo, len(runs))
	for i := range runs {
		infos[i] = runFromReport(runs[i])
	}

	return jsonResource(req.Params.URI, infos)
}

func runFromReport(r domain.IndexReport) runInfo {
	return runInfo{
		RunID:       r.RunID,
		StartedAt:   r.StartedAt,
		EndedAt:     r.EndedAt,
		NewScenes:   r.NewScenes,
		TotalScenes: r.TotalScenes,
		Failed:      r.VideosFailed,
		Error:       r.Error,
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
