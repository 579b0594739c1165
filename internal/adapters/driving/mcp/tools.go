package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

// FindSceneInput is the input schema for the find_scene tool.
type FindSceneInput struct {
	ImagePath      string `json:"image_path,omitempty" jsonschema:"path of the query image on the server's filesystem"`
	ImageBase64    string `json:"image_base64,omitempty" jsonschema:"query image bytes, base64 encoded (a data URI is accepted)"`
	TopN           int    `json:"top_n,omitempty" jsonschema:"maximum number of scenes to return (default 5)"`
	CandidateCount int    `json:"candidate_count,omitempty" jsonschema:"number of nearest neighbours to rerank (default 50)"`
	MinMatchCount  int    `json:"min_match_count,omitempty" jsonschema:"minimum local feature matches a scene needs (default 10, negative disables)"`
	Render         bool   `json:"render,omitempty" jsonschema:"include each matched frame as a JPEG data URI"`
}

// FindSceneOutput is the output schema for the find_scene tool.
type FindSceneOutput struct {
	Outcome              string        `json:"outcome"`
	Message              string        `json:"message"`
	Matches              []SceneOutput `json:"matches"`
	CandidatesConsidered int           `json:"candidates_considered"`
}

// SceneOutput is one matched scene.
type SceneOutput struct {
	VideoID   string  `json:"video_id"`
	Timestamp float64 `json:"timestamp"`
	Timecode  string  `json:"timecode"`
	Score     int64   `json:"score"`
	Distance  float64 `json:"distance"`
	Frame     string  `json:"frame,omitempty"`
}

// IndexLibraryInput is the input schema for the index_library tool.
type IndexLibraryInput struct {
	LibraryPath string `json:"library_path,omitempty" jsonschema:"directory inside the configured library to index (default: the whole library)"`
}

// IndexLibraryOutput is the output schema for the index_library tool.
type IndexLibraryOutput struct {
	RunID           string  `json:"run_id"`
	VideosProcessed int     `json:"videos_processed"`
	VideosFailed    int     `json:"videos_failed"`
	ScenesSkipped   int     `json:"scenes_skipped"`
	NewScenes       int     `json:"new_scenes"`
	TotalScenes     int     `json:"total_scenes"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_scene",
		Description: "Find the video scenes that look most like an image",
	}, s.handleFindScene)

	if s.ports.Indexer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_library",
			Description: "Index videos in the library that are not indexed yet",
		}, s.handleIndexLibrary)
	}
}

// handleFindScene handles the find_scene tool invocation.
func (s *Server) handleFindScene(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindSceneInput,
) (*mcp.CallToolResult, FindSceneOutput, error) {
	data, err := readImage(input)
	if err != nil {
		return nil, FindSceneOutput{}, err
	}

	opts := domain.QueryOptions{
		TopN:           input.TopN,
		CandidateCount: input.CandidateCount,
		MinMatchCount:  input.MinMatchCount,
		Render:         input.Render,
	}
	result, err := s.ports.Query.Query(ctx, data, opts)
	if err != nil {
		return nil, FindSceneOutput{}, err
	}

	output := FindSceneOutput{
		Outcome:              string(result.Outcome),
		Message:              result.Outcome.Message(),
		Matches:              make([]SceneOutput, len(result.Matches)),
		CandidatesConsidered: result.CandidatesConsidered,
	}
	for i, m := range result.Matches {
		output.Matches[i] = SceneOutput{
			VideoID:   m.VideoID,
			Timestamp: m.Timestamp,
			Timecode:  domain.FormatTimestamp(m.Timestamp),
			Score:     m.Score,
			Distance:  m.ANNDistance,
			Frame:     m.Rendering,
		}
	}

	return nil, output, nil
}

// handleIndexLibrary handles the index_library tool invocation.
func (s *Server) handleIndexLibrary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexLibraryInput,
) (*mcp.CallToolResult, IndexLibraryOutput, error) {
	report, err := s.ports.Indexer.Index(ctx, input.LibraryPath)
	if err != nil {
		return nil, IndexLibraryOutput{}, err
	}

	return nil, IndexLibraryOutput{
		RunID:           report.RunID,
		VideosProcessed: report.VideosProcessed,
		VideosFailed:    report.VideosFailed,
		ScenesSkipped:   report.ScenesSkipped,
		NewScenes:       report.NewScenes,
		TotalScenes:     report.TotalScenes,
		DurationSeconds: report.Duration().Seconds(),
	}, nil
}

// readImage returns the query image bytes from a path or inline base64.
func readImage(input FindSceneInput) ([]byte, error) {
	switch {
	case input.ImageBase64 != "":
		encoded := input.ImageBase64
		if i := strings.Index(encoded, ";base64,"); i >= 0 && strings.HasPrefix(encoded, "data:") {
			encoded = encoded[i+len(";base64,"):]
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decoding image_base64: %w", domain.ErrDecode)
		}
		return data, nil
	case input.ImagePath != "":
		data, err := os.ReadFile(input.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		return data, nil
	default:
		return nil, ErrMissingImage
	}
}
