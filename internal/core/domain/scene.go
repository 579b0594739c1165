package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SceneRecord is one indexed scene.
// SequenceIndex is the scene's position in the vector index and the join key
// between the vector index and the scene catalog. It is never reused.
type SceneRecord struct {
	// VideoID identifies the source video (slash-separated path relative to the library root).
	VideoID string

	// Timestamp is the representative frame position in seconds.
	Timestamp float64

	// SequenceIndex is the 0-based append position in the vector index.
	SequenceIndex uint64
}

// String returns "video@HH:MM:SS.ff".
func (r SceneRecord) String() string {
	return r.VideoID + "@" + FormatTimestamp(r.Timestamp)
}

// Segment is a detected scene span within a video, in seconds.
type Segment struct {
	Start float64
	End   float64
}

// Midpoint returns the representative timestamp of the segment,
// rounded to centiseconds.
func (s Segment) Midpoint() float64 {
	return RoundTimestamp((s.Start + s.End) / 2)
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Video is a discoverable video in the library.
type Video struct {
	// ID is the stable identifier recorded in the catalog.
	ID string

	// Path is the absolute filesystem path.
	Path string
}

// RoundTimestamp rounds seconds to centisecond precision.
func RoundTimestamp(seconds float64) float64 {
	return math.Round(seconds*100) / 100
}

// FormatTimestamp renders seconds as HH:MM:SS.ff.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	centis := int64(math.Round(seconds * 100))
	h := centis / 360000
	m := (centis / 6000) % 60
	s := (centis / 100) % 60
	cs := centis % 100
	return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m, s, cs)
}

// ParseTimestamp parses plain seconds ("12.5") or clock notation
// ("01:02:03.25", "02:03") into seconds.
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty timestamp", ErrInvalidInput)
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: timestamp %q", ErrInvalidInput, s)
	}

	var total float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: timestamp %q", ErrInvalidInput, s)
		}
		// Only the seconds field may carry a fraction; leading fields must be whole.
		if i < len(parts)-1 && v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: timestamp %q", ErrInvalidInput, s)
		}
		total = total*60 + v
	}
	return total, nil
}
