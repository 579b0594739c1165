package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
	"github.com/custodia-labs/sceneseek/internal/logger"
)

// Ensure SceneDetector implements the interface.
var _ driven.SceneDetector = (*SceneDetector)(nil)

// DefaultThreshold is the scene change score above which a cut is reported.
const DefaultThreshold = 0.3

// minSceneLength drops slivers between cuts reported on adjacent frames.
const minSceneLength = 0.05

var ptsTimePattern = regexp.MustCompile(`pts_time:\s*([0-9]+(?:\.[0-9]+)?)`)

// SceneDetector finds content cuts with ffmpeg's scene score filter.
type SceneDetector struct {
	ffmpeg    string
	ffprobe   string
	threshold float64
	run       Runner
}

// DetectorConfig configures the scene detector.
type DetectorConfig struct {
	FFmpegPath  string
	FFprobePath string

	// Threshold is the scene score in (0, 1] above which a frame starts a new scene.
	Threshold float64
}

// NewSceneDetector creates a scene detector.
// run is optional - if nil, ExecRunner is used.
func NewSceneDetector(cfg DetectorConfig, run Runner) *SceneDetector {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = DefaultThreshold
	}
	if run == nil {
		run = ExecRunner
	}
	return &SceneDetector{
		ffmpeg:    cfg.FFmpegPath,
		ffprobe:   cfg.FFprobePath,
		threshold: cfg.Threshold,
		run:       run,
	}
}

// Detect returns the scenes of the video at path in time order.
// A video without cuts is a single scene spanning its duration.
func (d *SceneDetector) Detect(ctx context.Context, path string) ([]domain.Segment, error) {
	duration, err := d.duration(ctx, path)
	if err != nil {
		return nil, err
	}

	cuts, err := d.cuts(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("%s: %d cuts over %s", path, len(cuts), domain.FormatTimestamp(duration))

	return segmentsFromCuts(cuts, duration), nil
}

func (d *SceneDetector) duration(ctx context.Context, path string) (float64, error) {
	stdout, stderr, err := d.run(ctx, d.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, runError(ctx, d.ffprobe, stderr, err)
	}

	value := strings.TrimSpace(string(stdout))
	duration, err := strconv.ParseFloat(value, 64)
	if err != nil || duration <= 0 || math.IsInf(duration, 0) || math.IsNaN(duration) {
		return 0, fmt.Errorf("%w: %s has no usable duration (%q)", domain.ErrDecode, path, value)
	}
	return duration, nil
}

func (d *SceneDetector) cuts(ctx context.Context, path string) ([]float64, error) {
	filter := fmt.Sprintf("select='gt(scene,%s)',showinfo", strconv.FormatFloat(d.threshold, 'f', -1, 64))
	_, stderr, err := d.run(ctx, d.ffmpeg,
		"-hide_banner",
		"-nostats",
		"-i", path,
		"-filter:v", filter,
		"-an",
		"-f", "null",
		"-",
	)
	if err != nil {
		return nil, runError(ctx, d.ffmpeg, stderr, err)
	}
	return parseCuts(string(stderr)), nil
}

// parseCuts extracts the pts_time of every showinfo line.
func parseCuts(output string) []float64 {
	var cuts []float64
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "showinfo") {
			continue
		}
		m := ptsTimePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if t, err := strconv.ParseFloat(m[1], 64); err == nil {
			cuts = append(cuts, t)
		}
	}
	sort.Float64s(cuts)
	return cuts
}

// segmentsFromCuts splits [0, duration] at each cut.
func segmentsFromCuts(cuts []float64, duration float64) []domain.Segment {
	bounds := []float64{0}
	for _, c := range cuts {
		if c <= bounds[len(bounds)-1]+minSceneLength || c >= duration-minSceneLength {
			continue
		}
		bounds = append(bounds, c)
	}
	bounds = append(bounds, duration)

	segments := make([]domain.Segment, 0, len(bounds)-1)
	for i := 1; i < len(bounds); i++ {
		segments = append(segments, domain.Segment{Start: bounds[i-1], End: bounds[i]})
	}
	return segments
}
