package domain

import "time"

// IndexReport summarises one indexing run.
// Partial failures are counted here and never returned as errors.
type IndexReport struct {
	// RunID uniquely identifies the run.
	RunID string

	StartedAt time.Time
	EndedAt   time.Time

	// VideosDiscovered is the number of videos found in the library.
	VideosDiscovered int

	// VideosToProcess is the number of discovered videos not yet catalogued.
	VideosToProcess int

	// VideosProcessed is the number of videos processed without a video-level failure.
	VideosProcessed int

	// VideosFailed is the number of videos skipped because detection or extraction failed.
	VideosFailed int

	// ScenesSkipped counts scenes dropped because their frame could not be decoded.
	ScenesSkipped int

	// NewScenes is the number of scenes appended by this run.
	NewScenes int

	// TotalScenes is the catalog length after the run.
	TotalScenes int

	// Error is set when the run aborted.
	Error string
}

// Duration returns the wall-clock time of the run.
func (r IndexReport) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Success reports whether the run completed.
func (r IndexReport) Success() bool {
	return r.Error == ""
}

// IndexStatus is the live state of the indexing pipeline.
type IndexStatus struct {
	Running   bool
	RunID     string
	StartedAt time.Time

	VideosTotal     int
	VideosDone      int
	ScenesExtracted int
}

// VectorPreview is a truncated view of one stored vector.
type VectorPreview struct {
	SequenceIndex uint64
	VideoID       string
	Timestamp     float64
	Components    []float32
}

// IndexStats describes the published index.
type IndexStats struct {
	// Ready is false when no index has been built or loaded.
	Ready bool

	Dimension int
	Vectors   int
	Scenes    int
	Videos    int

	// Preview holds the first vectors, truncated to PreviewComponents.
	Preview []VectorPreview
}

// PreviewComponents is the number of leading vector components shown in previews.
const PreviewComponents = 10
