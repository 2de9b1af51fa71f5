package tensor

import "github.com/pkg/errors"

// Shape represents the dimensions of an array.
// A zero-length shape describes a 0-dimensional array holding one element.
type Shape []int

// NumElements returns the total number of elements described by the shape.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every extent is non-negative.
// Zero extents are legal and describe empty arrays.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return errors.Wrapf(ErrInvalidArgument, "negative extent %d at dimension %d of shape %v", dim, i, s)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ContiguousStrides calculates canonical row-major byte strides for the shape:
// the last dimension advances by one item, each earlier dimension by the full
// span of the dimensions after it.
func (s Shape) ContiguousStrides(itemSize int) Strides {
	strides := make(Strides, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = itemSize
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}
