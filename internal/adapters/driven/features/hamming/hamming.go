// Package hamming matches binary local feature descriptors by Hamming
// distance.
package hamming

import (
	"encoding/binary"
	"math/bits"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

// Distance returns the number of differing bits between a and b, which must
// have equal length.
func Distance(a, b []byte) int {
	d := 0
	for len(a) >= 8 {
		d += bits.OnesCount64(binary.LittleEndian.Uint64(a) ^ binary.LittleEndian.Uint64(b))
		a, b = a[8:], b[8:]
	}
	for i := range a {
		d += bits.OnesCount8(a[i] ^ b[i])
	}
	return d
}

// Match counts cross-checked matches between a and b: pairs (i, j) where j
// is the nearest descriptor in b to a[i] and i is the nearest in a to b[j].
// Ties resolve to the lowest index. Sets with different descriptor sizes
// never match.
func Match(a, b domain.DescriptorSet) int {
	if a.Empty() || b.Empty() || a.Size != b.Size {
		return 0
	}
	na, nb := a.Count(), b.Count()

	bestA := make([]int, na) // nearest in b for each a
	bestB := make([]int, nb) // nearest in a for each b
	distA := make([]int, na)
	distB := make([]int, nb)
	for i := range distA {
		distA[i] = -1
	}
	for j := range distB {
		distB[j] = -1
	}

	for i := 0; i < na; i++ {
		da := a.At(i)
		for j := 0; j < nb; j++ {
			d := Distance(da, b.At(j))
			if distA[i] < 0 || d < distA[i] {
				distA[i], bestA[i] = d, j
			}
			if distB[j] < 0 || d < distB[j] {
				distB[j], bestB[j] = d, i
			}
		}
	}

	matches := 0
	for i, j := range bestA {
		if bestB[j] == i {
			matches++
		}
	}
	return matches
}
