package tensor

// Strides holds per-dimension byte deltas, one per shape dimension.
// Strides may be negative (reversed views) and need not be contiguous.
type Strides []int

// Equal checks if two stride sequences are equal.
func (st Strides) Equal(other Strides) bool {
	if len(st) != len(other) {
		return false
	}
	for i := range st {
		if st[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the strides.
func (st Strides) Clone() Strides {
	clone := make(Strides, len(st))
	copy(clone, st)
	return clone
}

// RequiredBytes returns the minimum buffer size in bytes, measured from offset
// zero, addressable by every valid multi-index under the given shape and
// strides. Each dimension with extent > 1 contributes (extent-1)*|stride|;
// dimensions with extent <= 1 contribute nothing. One item size is added for
// the element at the origin. A shape with any zero extent requires no bytes.
func RequiredBytes(shape Shape, strides Strides, itemSize int) int {
	if len(shape) != len(strides) {
		panic("shape and strides length mismatch")
	}
	if shape.NumElements() == 0 {
		return 0
	}
	n := itemSize
	for i, dim := range shape {
		if dim <= 1 {
			continue
		}
		st := strides[i]
		if st < 0 {
			st = -st
		}
		n += (dim - 1) * st
	}
	return n
}

// IsContiguous reports whether the strides describe the canonical C-contiguous
// (row-major) layout for the shape and item size.
func IsContiguous(shape Shape, strides Strides, itemSize int) bool {
	return strides.Equal(shape.ContiguousStrides(itemSize))
}

// dataRange returns the byte range [lo, hi) reachable from the view origin,
// relative to the origin. Negative strides reach below it, so lo can be
// negative. A zero-element view reaches nothing.
func dataRange(shape Shape, strides Strides, itemSize int) (lo, hi int) {
	if shape.NumElements() == 0 {
		return 0, 0
	}
	hi = itemSize
	for i, dim := range shape {
		if dim <= 1 {
			continue
		}
		if st := strides[i]; st >= 0 {
			hi += (dim - 1) * st
		} else {
			lo += (dim - 1) * st
		}
	}
	return lo, hi
}
