package flat

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an exact L2 index. It is not safe for concurrent mutation.
type Index struct {
	dim  int
	data []float32
}

// New creates an empty index. A zero dim is fixed by the first append.
func New(dim int) *Index {
	return &Index{dim: dim}
}

// Dimension returns the vector dimension, or 0 before the first append.
func (x *Index) Dimension() int {
	return x.dim
}

// Count returns the number of stored vectors.
func (x *Index) Count() int {
	if x.dim == 0 {
		return 0
	}
	return len(x.data) / x.dim
}

// Search returns up to k nearest neighbours of query.
func (x *Index) Search(query []float32, k int) ([]domain.Neighbor, error) {
	n := x.Count()
	if n == 0 || k <= 0 {
		if x.dim != 0 && len(query) != x.dim {
			return nil, fmt.Errorf("%w: query has %d components, index has %d",
				domain.ErrDimensionMismatch, len(query), x.dim)
		}
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d components, index has %d",
			domain.ErrDimensionMismatch, len(query), x.dim)
	}
	if k > n {
		k = n
	}

	h := make(neighborHeap, 0, k)
	for i := 0; i < n; i++ {
		d := l2sq(query, x.data[i*x.dim:(i+1)*x.dim])
		cand := domain.Neighbor{SequenceIndex: uint64(i), Distance: d}
		if len(h) < k {
			heap.Push(&h, cand)
			continue
		}
		if worse(h[0], cand) {
			h[0] = cand
			heap.Fix(&h, 0)
		}
	}

	out := []domain.Neighbor(h)
	sort.Slice(out, func(i, j int) bool { return worse(out[j], out[i]) })
	return out, nil
}

// Append adds vectors at the next positions and returns the first position.
func (x *Index) Append(vectors [][]float32) (uint64, error) {
	first := uint64(x.Count())
	if len(vectors) == 0 {
		return first, nil
	}

	dim := x.dim
	if dim == 0 {
		dim = len(vectors[0])
		if dim == 0 {
			return 0, fmt.Errorf("%w: empty vector", domain.ErrInvalidInput)
		}
	}
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("%w: vector %d has %d components, index has %d",
				domain.ErrDimensionMismatch, i, len(v), dim)
		}
	}

	x.dim = dim
	x.data = growFloat32(x.data, len(vectors)*dim)
	for _, v := range vectors {
		x.data = append(x.data, v...)
	}
	return first, nil
}

// Reconstruct returns a copy of the vector at seq.
func (x *Index) Reconstruct(seq uint64) ([]float32, error) {
	if seq >= uint64(x.Count()) {
		return nil, fmt.Errorf("%w: %d (count %d)", domain.ErrOutOfRange, seq, x.Count())
	}
	i := int(seq)
	out := make([]float32, x.dim)
	copy(out, x.data[i*x.dim:(i+1)*x.dim])
	return out, nil
}

// Truncate discards every vector at position n or above.
func (x *Index) Truncate(n int) error {
	if n < 0 || n > x.Count() {
		return fmt.Errorf("%w: truncate to %d (count %d)", domain.ErrOutOfRange, n, x.Count())
	}
	x.data = x.data[:n*x.dim]
	return nil
}

// Clone returns an independent copy.
func (x *Index) Clone() driven.VectorIndex {
	data := make([]float32, len(x.data))
	copy(data, x.data)
	return &Index{dim: x.dim, data: data}
}

// FromVectorIndex returns idx as an *Index, copying through Reconstruct
// when it is another implementation.
func FromVectorIndex(idx driven.VectorIndex) (*Index, error) {
	if fi, ok := idx.(*Index); ok {
		return fi, nil
	}
	out := New(idx.Dimension())
	for i := 0; i < idx.Count(); i++ {
		v, err := idx.Reconstruct(uint64(i))
		if err != nil {
			return nil, err
		}
		if _, err := out.Append([][]float32{v}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func l2sq(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// worse reports whether a ranks after b.
func worse(a, b domain.Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.SequenceIndex > b.SequenceIndex
}

func growFloat32(s []float32, n int) []float32 {
	if cap(s)-len(s) >= n {
		return s
	}
	out := make([]float32, len(s), len(s)+n)
	copy(out, s)
	return out
}

// neighborHeap is a max-heap on (distance, sequence index): the root is the
// worst of the current k best.
type neighborHeap []domain.Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *neighborHeap) Push(x any) { *h = append(*h, x.(domain.Neighbor)) }

func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
