// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"
	"image"
)

// EmbeddingProvider maps an image to a fixed-length global embedding.
//
// Implementations may include:
//   - An inference sidecar over HTTP (ViT, CLIP image towers)
//   - In-process models
type EmbeddingProvider interface {
	// Embed returns the embedding of img.
	// Returns an error wrapping domain.ErrDecode if the image is unusable.
	Embed(ctx context.Context, img image.Image) ([]float32, error)
}

// HealthChecker is implemented by providers that can verify connectivity.
type HealthChecker interface {
	// Ping validates the backend is reachable.
	Ping(ctx context.Context) error
}
