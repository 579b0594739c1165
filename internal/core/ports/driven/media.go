package driven

import (
	"context"
	"image"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

// SceneDetector splits a video into scenes.
type SceneDetector interface {
	// Detect returns the scenes of the video at path, in temporal order.
	Detect(ctx context.Context, path string) ([]domain.Segment, error)
}

// FrameSource decodes single frames.
type FrameSource interface {
	// FrameAt returns the frame of the video at path nearest to seconds.
	// Returns domain.ErrFrameUnavailable when no frame exists there and an
	// error wrapping domain.ErrDecode when the frame cannot be decoded.
	FrameAt(ctx context.Context, path string, seconds float64) (image.Image, error)
}

// VideoLibrary discovers videos under a library root.
type VideoLibrary interface {
	// Discover lists the videos under root, sorted by id.
	Discover(ctx context.Context, root string) ([]domain.Video, error)

	// Resolve maps a video id back to its path under root.
	Resolve(root, id string) (string, error)
}

// FrameRenderer produces a presentation form of a frame, such as a data URI.
type FrameRenderer interface {
	Render(img image.Image) (string, error)
}
