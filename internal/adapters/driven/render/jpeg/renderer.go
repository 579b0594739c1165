// Package jpeg renders matched frames as inline JPEG data URIs.
package jpeg

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// DataURIPrefix prefixes every rendered frame.
const DataURIPrefix = "data:image/jpeg;base64,"

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 85

// Verify interface compliance.
var _ driven.FrameRenderer = (*Renderer)(nil)

// Renderer implements driven.FrameRenderer.
type Renderer struct {
	quality int
}

// NewRenderer creates a renderer. Quality outside 1..100 uses DefaultQuality.
func NewRenderer(quality int) *Renderer {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Renderer{quality: quality}
}

// Render encodes img as a JPEG data URI.
func (r *Renderer) Render(img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("render frame: %w", domain.ErrInvalidInput)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.quality}); err != nil {
		return "", fmt.Errorf("render frame: %w", err)
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
