package driven

import "github.com/custodia-labs/sceneseek/internal/core/domain"

// SceneCatalog is the ordered record of indexed scenes.
// Record i always has SequenceIndex i.
type SceneCatalog interface {
	// Len returns the number of records.
	Len() int

	// Append adds records. Each record's SequenceIndex must equal its
	// position, otherwise domain.ErrInvalidInput is returned and nothing is added.
	Append(records []domain.SceneRecord) error

	// Get returns the record at seq, or domain.ErrOutOfRange.
	Get(seq uint64) (domain.SceneRecord, error)

	// VideoIDs returns the set of catalogued video ids.
	VideoIDs() map[string]struct{}

	// Records returns a copy of all records in order.
	Records() []domain.SceneRecord

	// Truncate discards every record at position n or above.
	Truncate(n int) error

	// Clone returns an independent copy.
	Clone() SceneCatalog
}
