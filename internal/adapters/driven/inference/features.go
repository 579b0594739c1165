package inference

import (
	"context"
	"image"

	"github.com/custodia-labs/sceneseek/internal/adapters/driven/features/hamming"
	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// Ensure LocalFeatures implements the interface.
var _ driven.LocalFeatureProvider = (*LocalFeatures)(nil)

// LocalFeatures extracts descriptors on the sidecar and matches them
// in process with cross-checked Hamming matching.
type LocalFeatures struct {
	client *Client
}

// NewLocalFeatures creates a local feature provider backed by client.
func NewLocalFeatures(client *Client) *LocalFeatures {
	return &LocalFeatures{client: client}
}

// Extract returns the descriptors of img.
func (f *LocalFeatures) Extract(ctx context.Context, img image.Image) (domain.DescriptorSet, error) {
	return f.client.Descriptors(ctx, img)
}

// Match returns the number of cross-checked matches between a and b.
func (f *LocalFeatures) Match(a, b domain.DescriptorSet) int {
	return hamming.Match(a, b)
}
