package driving

import (
	"context"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

// QueryService finds the indexed scenes most similar to an image.
type QueryService interface {
	// Query decodes imageData and returns ranked matches.
	// An empty result is a negative answer. domain.ErrIndexNotReady is returned
	// when there is no usable index and domain.ErrDecode when the image
	// cannot be decoded.
	Query(ctx context.Context, imageData []byte, opts domain.QueryOptions) (*domain.QueryResult, error)
}
