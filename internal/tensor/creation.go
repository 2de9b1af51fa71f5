package tensor

import (
	"math"

	"github.com/pkg/errors"

	"github.com/axon-ml/axon/internal/graph"
)

// Construction primitives. These allocate or describe an array and leave
// population to a device op; the high-level API below combines them with
// default resolution and graph bookkeeping.

// EmptyStrided allocates an uninitialized buffer on device sized by
// RequiredBytes and returns an Array view with the given shape and strides
// over it. Negative strides are honored: the view origin is placed past their
// span so every valid multi-index stays inside the buffer. Content is
// unspecified until written.
func EmptyStrided(shape Shape, dtype DataType, strides Strides, device Device) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(strides) != len(shape) {
		return nil, errors.Wrapf(ErrInvalidArgument, "strides %v do not match shape %v", strides, shape)
	}
	if _, err := BackendFor(device); err != nil {
		return nil, err
	}
	buf := newBuffer(RequiredBytes(shape, strides, dtype.Size()))
	lo, _ := dataRange(shape, strides, dtype.Size())
	return newArrayOver(buf, shape, strides, dtype, device, -lo, nil), nil
}

// FromHostData wraps externally supplied host memory as an Array and
// materializes it on device. The bytes are copied into a device-owned buffer,
// so the caller's slice is not retained. The view keeps the caller's strides
// and byte offset into data.
func FromHostData(shape Shape, dtype DataType, data []byte, strides Strides, offset int, device Device) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(strides) != len(shape) {
		return nil, errors.Wrapf(ErrInvalidArgument, "strides %v do not match shape %v", strides, shape)
	}
	if offset < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "negative offset %d", offset)
	}
	if _, err := BackendFor(device); err != nil {
		return nil, err
	}
	// For non-negative strides this is exactly the
	// offset + RequiredBytes <= len(data) requirement; negative strides reach
	// below the origin, so both ends of the range are checked.
	if lo, hi := dataRange(shape, strides, dtype.Size()); offset+lo < 0 || offset+hi > len(data) {
		return nil, errors.Wrapf(ErrInvalidBufferSize,
			"shape %v with strides %v requires %d bytes at offset %d, buffer holds %d",
			shape, strides, RequiredBytes(shape, strides, dtype.Size()), offset, len(data))
	}
	buf := newBuffer(len(data))
	copy(buf.data, data)
	return newArrayOver(buf, shape, strides, dtype, device, offset, nil), nil
}

// FromSlice creates a C-contiguous array on device from a Go slice, inferring
// the dtype from T. The slice is copied. Recognized options: WithDevice.
func FromSlice[T DType](data []T, shape Shape, opts ...Option) (*Array, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Wrapf(ErrInvalidArgument,
			"shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	o := applyOptions(opts)
	device, err := o.resolveDevice()
	if err != nil {
		return nil, err
	}
	var dummy T
	dtype := inferDataType(dummy)
	out, err := EmptyStrided(shape, dtype, shape.ContiguousStrides(dtype.Size()), device)
	if err != nil {
		return nil, err
	}
	i := 0
	out.ForEachOffset(func(off int) {
		out.Store(off, NewScalar(data[i]))
		i++
	})
	return out, nil
}

// EmptyReduced allocates an uninitialized array whose shape is shape with the
// given axes removed, or kept as unit dimensions with stride 0 if keepdims is
// true. Used by reduction-producing paths.
func EmptyReduced(shape Shape, dtype DataType, axes []int, keepdims bool, device Device) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	reduced, err := normalizeAxes(axes, len(shape))
	if err != nil {
		return nil, err
	}
	if !keepdims {
		kept := make(Shape, 0, len(shape))
		for i, dim := range shape {
			if !reduced[i] {
				kept = append(kept, dim)
			}
		}
		return EmptyStrided(kept, dtype, kept.ContiguousStrides(dtype.Size()), device)
	}
	kept := make(Shape, 0, len(shape))
	for i, dim := range shape {
		if !reduced[i] {
			kept = append(kept, dim)
		}
	}
	inner := kept.ContiguousStrides(dtype.Size())
	outShape := make(Shape, len(shape))
	outStrides := make(Strides, len(shape))
	j := 0
	for i, dim := range shape {
		if reduced[i] {
			outShape[i] = 1
			outStrides[i] = 0
		} else {
			outShape[i] = dim
			outStrides[i] = inner[j]
			j++
		}
	}
	return EmptyStrided(outShape, dtype, outStrides, device)
}

// normalizeAxes resolves negative axes and flags each reduced dimension.
func normalizeAxes(axes []int, ndim int) ([]bool, error) {
	reduced := make([]bool, ndim)
	for _, ax := range axes {
		norm := ax
		if norm < 0 {
			norm += ndim
		}
		if norm < 0 || norm >= ndim {
			return nil, errors.Wrapf(ErrInvalidArgument, "axis %d out of range for %d dimensions", ax, ndim)
		}
		if reduced[norm] {
			return nil, errors.Wrapf(ErrInvalidArgument, "duplicate axis %d", ax)
		}
		reduced[norm] = true
	}
	return reduced, nil
}

// AsContiguous returns a unchanged if it is already C-contiguous in dtype.
// Otherwise it allocates a fresh C-contiguous array of the same shape and
// populates it through the Copy op, or the AsType op when dtype differs from
// a's. The result inherits a's graph connections.
func AsContiguous(a *Array, dtype DataType) (*Array, error) {
	if a.dtype == dtype && a.IsContiguous() {
		return a, nil
	}
	out, err := EmptyStrided(a.shape, dtype, a.shape.ContiguousStrides(dtype.Size()), a.device)
	if err != nil {
		return nil, err
	}
	if a.dtype == dtype {
		op, err := opFor[CopyOp](a.device, OpCopy)
		if err != nil {
			return nil, err
		}
		if err := op.Call(a, out); err != nil {
			return nil, err
		}
	} else {
		op, err := opFor[AsTypeOp](a.device, OpAsType)
		if err != nil {
			return nil, err
		}
		if err := op.Call(a, out); err != nil {
			return nil, err
		}
	}
	out.graphs = a.Graphs()
	return out, nil
}

// High-level creation API. Every function resolves omitted dtypes to a
// documented fallback and omitted devices to the process default device.

// Empty creates an uninitialized C-contiguous array.
// Recognized options: WithDType (default DefaultDType), WithDevice.
func Empty(shape Shape, opts ...Option) (*Array, error) {
	o := applyOptions(opts)
	return emptyResolved(shape, o.resolveDType(DefaultDType), &o)
}

func emptyResolved(shape Shape, dtype DataType, o *creationOptions) (*Array, error) {
	device, err := o.resolveDevice()
	if err != nil {
		return nil, err
	}
	return EmptyStrided(shape, dtype, shape.ContiguousStrides(dtype.Size()), device)
}

// Full creates an array filled with value.
// Recognized options: WithDType (default: value's dtype), WithDevice.
func Full(shape Shape, value Scalar, opts ...Option) (*Array, error) {
	o := applyOptions(opts)
	out, err := emptyResolved(shape, o.resolveDType(value.DType()), &o)
	if err != nil {
		return nil, err
	}
	if err := fillArray(value, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Zeros creates an array filled with zeros.
// Recognized options: WithDType (default DefaultDType), WithDevice.
func Zeros(shape Shape, opts ...Option) (*Array, error) {
	o := applyOptions(opts)
	dt := o.resolveDType(DefaultDType)
	return Full(shape, scalarOf(dt, 0), append(opts, WithDType(dt))...)
}

// Ones creates an array filled with ones.
// Recognized options: WithDType (default DefaultDType), WithDevice.
func Ones(shape Shape, opts ...Option) (*Array, error) {
	o := applyOptions(opts)
	dt := o.resolveDType(DefaultDType)
	return Full(shape, scalarOf(dt, 1), append(opts, WithDType(dt))...)
}

func fillArray(value Scalar, out *Array) error {
	op, err := opFor[FillOp](out.device, OpFill)
	if err != nil {
		return err
	}
	return op.Call(value, out)
}

// Arange creates a 1-d array with values start, start+step, ... up to but not
// including stop. The length is ceil((stop-start)/step), clamped to zero when
// step does not move start toward stop. A zero step fails.
// Recognized options: WithDType (default: inferred from T), WithDevice.
func Arange[T Numeric](start, stop, step T, opts ...Option) (*Array, error) {
	o := applyOptions(opts)
	var dummy T
	dtype := o.resolveDType(inferDataType(dummy))
	device, err := o.resolveDevice()
	if err != nil {
		return nil, err
	}

	startF, stopF, stepF := float64(start), float64(stop), float64(step)
	if stepF == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "arange step must not be zero")
	}
	n := int(math.Ceil((stopF - startF) / stepF))
	if n < 0 {
		n = 0
	}

	out, err := EmptyStrided(Shape{n}, dtype, Shape{n}.ContiguousStrides(dtype.Size()), device)
	if err != nil {
		return nil, err
	}
	op, err := opFor[ArangeOp](device, OpArange)
	if err != nil {
		return nil, err
	}
	if err := op.Call(NewScalar(start), NewScalar(step), out); err != nil {
		return nil, err
	}
	return out, nil
}

// ArangeTo is Arange with start 0 and step 1.
func ArangeTo[T Numeric](stop T, opts ...Option) (*Array, error) {
	return Arange(0, stop, 1, opts...)
}

// ArangeFrom is Arange with step 1.
func ArangeFrom[T Numeric](start, stop T, opts ...Option) (*Array, error) {
	return Arange(start, stop, 1, opts...)
}

// EmptyLike creates an uninitialized array with a's shape and dtype.
//
// The new array is allocated on the default device (or WithDevice); a's own
// device is deliberately ignored so that derived arrays are not silently
// pinned to wherever their template happened to live.
// Recognized options: WithDevice.
func EmptyLike(a *Array, opts ...Option) (*Array, error) {
	o := applyOptions(opts)
	return emptyResolved(a.shape, a.dtype, &o)
}

// FullLike creates an array with a's shape and dtype filled with value.
// Device policy and options as EmptyLike.
func FullLike(a *Array, value Scalar, opts ...Option) (*Array, error) {
	out, err := EmptyLike(a, opts...)
	if err != nil {
		return nil, err
	}
	if err := fillArray(value, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ZerosLike creates a zero-filled array with a's shape and dtype.
// Device policy and options as EmptyLike.
func ZerosLike(a *Array, opts ...Option) (*Array, error) {
	return FullLike(a, scalarOf(a.dtype, 0), opts...)
}

// OnesLike creates a one-filled array with a's shape and dtype.
// Device policy and options as EmptyLike.
func OnesLike(a *Array, opts ...Option) (*Array, error) {
	return FullLike(a, scalarOf(a.dtype, 1), opts...)
}

// Copy creates a fresh C-contiguous copy of a on a's device.
//
// The copy is connected to every differentiation graph active at call time,
// not just the graphs a is already connected to, so a copied value stays
// differentiable under graphs created after a itself.
func Copy(a *Array) (*Array, error) {
	out, err := EmptyStrided(a.shape, a.dtype, a.shape.ContiguousStrides(a.dtype.Size()), a.device)
	if err != nil {
		return nil, err
	}
	op, err := opFor[CopyOp](a.device, OpCopy)
	if err != nil {
		return nil, err
	}
	if err := op.Call(a, out); err != nil {
		return nil, err
	}
	out.graphs = graph.ActiveIDs()
	return out, nil
}

// Identity creates the n-by-n identity matrix. n must be non-negative.
// Recognized options: WithDType (default DefaultDType), WithDevice.
func Identity(n int, opts ...Option) (*Array, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "identity size must be non-negative, got %d", n)
	}
	o := applyOptions(opts)
	out, err := emptyResolved(Shape{n, n}, o.resolveDType(DefaultDType), &o)
	if err != nil {
		return nil, err
	}
	op, err := opFor[IdentityOp](out.device, OpIdentity)
	if err != nil {
		return nil, err
	}
	if err := op.Call(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Eye creates an n-by-m matrix with ones along the k-th diagonal and zeros
// elsewhere. n and m must be non-negative.
// Recognized options: WithColumns (default n), WithDiagonal (default 0),
// WithDType (default DefaultDType), WithDevice.
func Eye(n int, opts ...Option) (*Array, error) {
	o := applyOptions(opts)
	m := n
	if o.hasCols {
		m = o.cols
	}
	if n < 0 || m < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "eye dimensions must be non-negative, got %d x %d", n, m)
	}
	out, err := emptyResolved(Shape{n, m}, o.resolveDType(DefaultDType), &o)
	if err != nil {
		return nil, err
	}
	op, err := opFor[EyeOp](out.device, OpEye)
	if err != nil {
		return nil, err
	}
	if err := op.Call(o.diag, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Diag extracts or builds a diagonal. For 1-d v it builds a square matrix
// with v along the k-th diagonal; for 2-d v it returns a 1-d strided view of
// v's k-th diagonal, sharing v's buffer.
// Recognized options (1-d build only): WithDevice.
func Diag(v *Array, k int, opts ...Option) (*Array, error) {
	switch len(v.shape) {
	case 1:
		return buildDiag(v, k, opts)
	case 2:
		return extractDiag(v, k), nil
	default:
		return nil, errors.Wrapf(ErrInvalidArgument, "diag requires a 1-d or 2-d array, got shape %v", v.shape)
	}
}

// Diagflat builds a square matrix with the flattened elements of v along the
// k-th diagonal. Recognized options: WithDevice.
func Diagflat(v *Array, k int, opts ...Option) (*Array, error) {
	flat := v
	if len(v.shape) != 1 {
		c, err := AsContiguous(v, v.dtype)
		if err != nil {
			return nil, err
		}
		flat = c.view(Shape{c.NumElements()}, Strides{c.ItemSize()}, c.offset)
		// The flat view is internal scaffolding; drop its buffer reference so
		// the source reports unique again once the diagonal is built.
		defer flat.Release()
	}
	return buildDiag(flat, k, opts)
}

func buildDiag(v *Array, k int, opts []Option) (*Array, error) {
	o := applyOptions(opts)
	device, err := o.resolveDevice()
	if err != nil {
		return nil, err
	}
	n := v.shape[0] + absInt(k)
	shape := Shape{n, n}
	out, err := EmptyStrided(shape, v.dtype, shape.ContiguousStrides(v.dtype.Size()), device)
	if err != nil {
		return nil, err
	}
	op, err := opFor[DiagflatOp](device, OpDiagflat)
	if err != nil {
		return nil, err
	}
	if err := op.Call(v, k, out); err != nil {
		return nil, err
	}
	out.graphs = v.Graphs()
	return out, nil
}

func extractDiag(v *Array, k int) *Array {
	rows, cols := v.shape[0], v.shape[1]
	var n, offset int
	if k >= 0 {
		n = minInt(rows, cols-k)
		offset = v.offset + k*v.strides[1]
	} else {
		n = minInt(rows+k, cols)
		offset = v.offset - k*v.strides[0]
	}
	if n <= 0 {
		// Empty diagonal: no addressable elements, keep the origin in bounds.
		return v.view(Shape{0}, Strides{v.strides[0] + v.strides[1]}, v.offset)
	}
	return v.view(Shape{n}, Strides{v.strides[0] + v.strides[1]}, offset)
}

// Linspace creates a 1-d array of evenly spaced samples from start toward
// stop. With the endpoint included (the default) the spacing is
// (stop-start)/(num-1) and the last sample equals stop; without it the
// spacing is (stop-start)/num and the last sample stops one step short.
// A single sample equals start. num must be non-negative.
// Recognized options: WithNum (default 50), WithEndpoint (default true),
// WithDType (default DefaultDType), WithDevice.
func Linspace(start, stop float64, opts ...Option) (*Array, error) {
	o := applyOptions(opts)
	num := o.num
	if num < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "linspace num must be non-negative, got %d", num)
	}
	out, err := emptyResolved(Shape{num}, o.resolveDType(DefaultDType), &o)
	if err != nil {
		return nil, err
	}
	if num == 0 {
		return out, nil
	}
	effStop := stop
	if !o.endpoint {
		effStop = start + (stop-start)*float64(num-1)/float64(num)
	}
	op, err := opFor[LinspaceOp](out.device, OpLinspace)
	if err != nil {
		return nil, err
	}
	if err := op.Call(start, effStop, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AsContiguousArray returns a C-contiguous rendition of a, first promoting a
// 0-dimensional input to shape {1} so downstream consumers never see 0-d
// arrays from this path. If a is already contiguous in the target dtype the
// same buffer is returned.
// Recognized options: WithDType (default: a's dtype).
func AsContiguousArray(a *Array, opts ...Option) (*Array, error) {
	o := applyOptions(opts)
	dt := o.resolveDType(a.dtype)
	if len(a.shape) != 0 {
		return AsContiguous(a, dt)
	}
	b := a.view(Shape{1}, Strides{a.ItemSize()}, a.offset)
	out, err := AsContiguous(b, dt)
	if err != nil || out != b {
		// The promoted view was only scaffolding for the copy path; release
		// its buffer reference. When out == b the view itself is the result
		// and legitimately keeps the reference.
		b.Release()
	}
	return out, err
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
