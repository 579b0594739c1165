package driving

import "context"

// SnapshotService copies the persisted index to and from remote storage.
type SnapshotService interface {
	// Push uploads the persisted index and catalog.
	Push(ctx context.Context) error

	// Pull downloads the remote index and catalog, replaces the local
	// files and republishes the index to queries.
	Pull(ctx context.Context) error
}
