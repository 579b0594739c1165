package driven

import (
	"context"
	"image"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

// LocalFeatureProvider extracts and scores local descriptors.
type LocalFeatureProvider interface {
	// Extract returns the descriptors of img. An empty set is not an error.
	Extract(ctx context.Context, img image.Image) (domain.DescriptorSet, error)

	// Match returns the number of mutually consistent matches between a and b.
	// Match must be pure and safe for concurrent use.
	Match(a, b domain.DescriptorSet) int
}
