package domain

import "fmt"

// DescriptorSet holds the local feature descriptors of one image.
// Descriptors are fixed-size binary vectors packed back to back.
type DescriptorSet struct {
	// Size is the byte length of one descriptor.
	Size int

	// Data holds Count()*Size bytes.
	Data []byte
}

// NewDescriptorSet validates and wraps packed descriptor bytes.
func NewDescriptorSet(size int, data []byte) (DescriptorSet, error) {
	if len(data) == 0 {
		return DescriptorSet{Size: size}, nil
	}
	if size <= 0 {
		return DescriptorSet{}, fmt.Errorf("%w: descriptor size %d", ErrInvalidInput, size)
	}
	if len(data)%size != 0 {
		return DescriptorSet{}, fmt.Errorf("%w: %d bytes is not a multiple of descriptor size %d",
			ErrInvalidInput, len(data), size)
	}
	return DescriptorSet{Size: size, Data: data}, nil
}

// Count returns the number of descriptors.
func (d DescriptorSet) Count() int {
	if d.Size <= 0 {
		return 0
	}
	return len(d.Data) / d.Size
}

// At returns descriptor i.
func (d DescriptorSet) At(i int) []byte {
	return d.Data[i*d.Size : (i+1)*d.Size]
}

// Empty reports whether the set has no descriptors.
func (d DescriptorSet) Empty() bool {
	return d.Count() == 0
}
