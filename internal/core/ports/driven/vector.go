package driven

import "github.com/custodia-labs/sceneseek/internal/core/domain"

// VectorIndex is an append-only exact nearest neighbour index over
// fixed-dimension float32 vectors. Positions are contiguous from zero
// in append order.
//
// Implementations are not safe for concurrent mutation. Readers may share
// an index that is no longer being written.
type VectorIndex interface {
	// Dimension returns the vector dimension, or 0 before the first append.
	Dimension() int

	// Count returns the number of stored vectors.
	Count() int

	// Search returns up to k nearest vectors by squared Euclidean distance,
	// ascending, ties broken by ascending sequence index.
	// Returns domain.ErrDimensionMismatch if len(query) != Dimension().
	Search(query []float32, k int) ([]domain.Neighbor, error)

	// Append adds vectors at the next contiguous positions, in input order,
	// and returns the position of the first.
	Append(vectors [][]float32) (uint64, error)

	// Reconstruct returns a copy of the vector stored at seq.
	Reconstruct(seq uint64) ([]float32, error)

	// Truncate discards every vector at position n or above.
	Truncate(n int) error

	// Clone returns an independent copy.
	Clone() VectorIndex
}
