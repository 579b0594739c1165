package driven

import "context"

// SnapshotStore copies files to and from remote object storage.
type SnapshotStore interface {
	// Upload stores the local file at path under key.
	Upload(ctx context.Context, key, path string) error

	// Download writes the object at key to the local file at path.
	// Returns domain.ErrNotFound if the object does not exist.
	Download(ctx context.Context, key, path string) error
}
