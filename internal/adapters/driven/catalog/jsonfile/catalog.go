// Package jsonfile provides the scene catalog persisted as a JSON document.
//
// The document is an array of {"id", "timestamp", "sequence_index"} objects
// in sequence order. Older catalogs without sequence_index, or with string
// timestamps, are accepted on load.
package jsonfile

import (
	"fmt"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.SceneCatalog = (*Catalog)(nil)

// Catalog is an in-memory scene catalog. It is not safe for concurrent mutation.
type Catalog struct {
	records []domain.SceneRecord
	videos  map[string]int
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{videos: make(map[string]int)}
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Append adds records whose sequence indexes continue the catalog.
func (c *Catalog) Append(records []domain.SceneRecord) error {
	next := uint64(len(c.records))
	for i, r := range records {
		if r.SequenceIndex != next+uint64(i) {
			return fmt.Errorf("%w: record %d has sequence index %d, expected %d",
				domain.ErrInvalidInput, i, r.SequenceIndex, next+uint64(i))
		}
		if r.VideoID == "" {
			return fmt.Errorf("%w: record %d has no video id", domain.ErrInvalidInput, i)
		}
	}

	for _, r := range records {
		c.records = append(c.records, r)
		c.videos[r.VideoID]++
	}
	return nil
}

// Get returns the record at seq.
func (c *Catalog) Get(seq uint64) (domain.SceneRecord, error) {
	if seq >= uint64(len(c.records)) {
		return domain.SceneRecord{}, fmt.Errorf("%w: %d (catalog length %d)",
			domain.ErrOutOfRange, seq, len(c.records))
	}
	return c.records[seq], nil
}

// VideoIDs returns the set of catalogued video ids.
func (c *Catalog) VideoIDs() map[string]struct{} {
	out := make(map[string]struct{}, len(c.videos))
	for id := range c.videos {
		out[id] = struct{}{}
	}
	return out
}

// Records returns a copy of all records.
func (c *Catalog) Records() []domain.SceneRecord {
	out := make([]domain.SceneRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Truncate discards every record at position n or above.
func (c *Catalog) Truncate(n int) error {
	if n < 0 || n > len(c.records) {
		return fmt.Errorf("%w: truncate to %d (catalog length %d)", domain.ErrOutOfRange, n, len(c.records))
	}
	for _, r := range c.records[n:] {
		c.videos[r.VideoID]--
		if c.videos[r.VideoID] == 0 {
			delete(c.videos, r.VideoID)
		}
	}
	c.records = c.records[:n:n]
	return nil
}

// Clone returns an independent copy.
func (c *Catalog) Clone() driven.SceneCatalog {
	out := &Catalog{
		records: c.Records(),
		videos:  make(map[string]int, len(c.videos)),
	}
	for id, n := range c.videos {
		out.videos[id] = n
	}
	return out
}
