package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// Ensure FrameSource implements the interface.
var _ driven.FrameSource = (*FrameSource)(nil)

// FrameSource decodes single frames with ffmpeg.
type FrameSource struct {
	ffmpeg string
	run    Runner
}

// NewFrameSource creates a frame source using the given ffmpeg binary.
// run is optional - if nil, ExecRunner is used.
func NewFrameSource(ffmpegPath string, run Runner) *FrameSource {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if run == nil {
		run = ExecRunner
	}
	return &FrameSource{ffmpeg: ffmpegPath, run: run}
}

// FrameAt returns the first frame at or after seconds.
// A timestamp past the end of the video yields domain.ErrFrameUnavailable.
func (f *FrameSource) FrameAt(ctx context.Context, path string, seconds float64) (image.Image, error) {
	if seconds < 0 {
		return nil, fmt.Errorf("%w: negative timestamp %v", domain.ErrInvalidInput, seconds)
	}

	stdout, stderr, err := f.run(ctx, f.ffmpeg,
		"-v", "error",
		"-ss", strconv.FormatFloat(seconds, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	if err != nil {
		runErr := runError(ctx, f.ffmpeg, stderr, err)
		if ctx.Err() != nil || isProviderError(runErr) {
			return nil, runErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrFrameUnavailable, runErr)
	}
	if len(stdout) == 0 {
		return nil, fmt.Errorf("%w: no frame at %s in %s",
			domain.ErrFrameUnavailable, domain.FormatTimestamp(seconds), path)
	}

	img, err := png.Decode(bytes.NewReader(stdout))
	if err != nil {
		return nil, fmt.Errorf("%w: frame at %s: %v", domain.ErrDecode, domain.FormatTimestamp(seconds), err)
	}
	return img, nil
}
