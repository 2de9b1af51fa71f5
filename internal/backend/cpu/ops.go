package cpu

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/axon-ml/axon/internal/tensor"
)

var (
	zero = tensor.NewScalar(0)
	one  = tensor.NewScalar(1)
)

// forEachPair walks two same-shaped arrays in row-major index order, calling
// fn with the byte offset of each element pair. The arrays may have entirely
// different strides.
func forEachPair(a, b *tensor.Array, fn func(aOff, bOff int)) {
	shape := a.Shape()
	if shape.NumElements() == 0 {
		return
	}
	if len(shape) == 0 {
		fn(a.Offset(), b.Offset())
		return
	}
	aSt, bSt := a.Strides(), b.Strides()
	idx := make([]int, len(shape))
	aOff, bOff := a.Offset(), b.Offset()
	for {
		fn(aOff, bOff)
		d := len(shape) - 1
		for ; d >= 0; d-- {
			idx[d]++
			aOff += aSt[d]
			bOff += bSt[d]
			if idx[d] < shape[d] {
				break
			}
			aOff -= shape[d] * aSt[d]
			bOff -= shape[d] * bSt[d]
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}

type arangeOp struct{ b *Backend }

func (arangeOp) OpName() string { return tensor.OpArange }

func (o arangeOp) Call(start, step tensor.Scalar, out *tensor.Array) error {
	if err := o.b.owns(out); err != nil {
		return err
	}
	if len(out.Shape()) != 1 {
		return errors.Wrapf(tensor.ErrInvalidArgument, "arange destination must be 1-d, got shape %v", out.Shape())
	}
	if out.DType().IsInteger() {
		// Step in exact int64 arithmetic so large ranges do not drift.
		v, st := start.Int64(), step.Int64()
		i := int64(0)
		out.ForEachOffset(func(off int) {
			out.Store(off, tensor.NewScalar(v+i*st))
			i++
		})
		return nil
	}
	v, st := start.Float64(), step.Float64()
	i := 0
	out.ForEachOffset(func(off int) {
		out.Store(off, tensor.NewScalar(v+float64(i)*st))
		i++
	})
	return nil
}

type copyOp struct{ b *Backend }

func (copyOp) OpName() string { return tensor.OpCopy }

func (o copyOp) Call(a, out *tensor.Array) error {
	if err := o.b.owns(a, out); err != nil {
		return err
	}
	if !a.Shape().Equal(out.Shape()) {
		return errors.Wrapf(tensor.ErrInvalidArgument, "copy shape mismatch: %v vs %v", a.Shape(), out.Shape())
	}
	if a.DType() != out.DType() {
		return errors.Wrapf(tensor.ErrInvalidArgument, "copy dtype mismatch: %s vs %s", a.DType(), out.DType())
	}
	if a.IsContiguous() && out.IsContiguous() {
		n := a.NumElements() * a.ItemSize()
		copy(out.Bytes()[:n], a.Bytes()[:n])
		return nil
	}
	forEachPair(a, out, func(src, dst int) {
		out.Store(dst, a.Load(src))
	})
	return nil
}

type asTypeOp struct{ b *Backend }

func (asTypeOp) OpName() string { return tensor.OpAsType }

func (o asTypeOp) Call(a, out *tensor.Array) error {
	if err := o.b.owns(a, out); err != nil {
		return err
	}
	if !a.Shape().Equal(out.Shape()) {
		return errors.Wrapf(tensor.ErrInvalidArgument, "astype shape mismatch: %v vs %v", a.Shape(), out.Shape())
	}
	forEachPair(a, out, func(src, dst int) {
		out.Store(dst, a.Load(src))
	})
	return nil
}

type fillOp struct{ b *Backend }

func (fillOp) OpName() string { return tensor.OpFill }

func (o fillOp) Call(value tensor.Scalar, out *tensor.Array) error {
	if err := o.b.owns(out); err != nil {
		return err
	}
	out.ForEachOffset(func(off int) {
		out.Store(off, value)
	})
	return nil
}

type identityOp struct{ b *Backend }

func (identityOp) OpName() string { return tensor.OpIdentity }

func (o identityOp) Call(out *tensor.Array) error {
	if err := o.b.owns(out); err != nil {
		return err
	}
	shape := out.Shape()
	if len(shape) != 2 || shape[0] != shape[1] {
		return errors.Wrapf(tensor.ErrInvalidArgument, "identity destination must be square 2-d, got shape %v", shape)
	}
	out.ForEachOffset(func(off int) {
		out.Store(off, zero)
	})
	st, base := out.Strides(), out.Offset()
	for i := 0; i < shape[0]; i++ {
		out.Store(base+i*(st[0]+st[1]), one)
	}
	return nil
}

type eyeOp struct{ b *Backend }

func (eyeOp) OpName() string { return tensor.OpEye }

func (o eyeOp) Call(k int, out *tensor.Array) error {
	if err := o.b.owns(out); err != nil {
		return err
	}
	shape := out.Shape()
	if len(shape) != 2 {
		return errors.Wrapf(tensor.ErrInvalidArgument, "eye destination must be 2-d, got shape %v", shape)
	}
	out.ForEachOffset(func(off int) {
		out.Store(off, zero)
	})
	rows, cols := shape[0], shape[1]
	st, base := out.Strides(), out.Offset()
	for row, col := diagOrigin(k); row < rows && col < cols; row, col = row+1, col+1 {
		out.Store(base+row*st[0]+col*st[1], one)
	}
	return nil
}

type diagflatOp struct{ b *Backend }

func (diagflatOp) OpName() string { return tensor.OpDiagflat }

func (o diagflatOp) Call(v *tensor.Array, k int, out *tensor.Array) error {
	if err := o.b.owns(v, out); err != nil {
		return err
	}
	if len(v.Shape()) != 1 {
		return errors.Wrapf(tensor.ErrInvalidArgument, "diagflat source must be 1-d, got shape %v", v.Shape())
	}
	shape := out.Shape()
	if len(shape) != 2 {
		return errors.Wrapf(tensor.ErrInvalidArgument, "diagflat destination must be 2-d, got shape %v", shape)
	}
	row, col := diagOrigin(k)
	if row+v.Shape()[0] > shape[0] || col+v.Shape()[0] > shape[1] {
		return errors.Wrapf(tensor.ErrInvalidArgument,
			"diagonal %d of length %d does not fit in shape %v", k, v.Shape()[0], shape)
	}
	out.ForEachOffset(func(off int) {
		out.Store(off, zero)
	})
	st, base := out.Strides(), out.Offset()
	v.ForEachOffset(func(src int) {
		out.Store(base+row*st[0]+col*st[1], v.Load(src))
		row, col = row+1, col+1
	})
	return nil
}

// diagOrigin returns the first (row, col) of the k-th diagonal.
func diagOrigin(k int) (int, int) {
	if k >= 0 {
		return 0, k
	}
	return -k, 0
}

type linspaceOp struct{ b *Backend }

func (linspaceOp) OpName() string { return tensor.OpLinspace }

func (o linspaceOp) Call(start, stop float64, out *tensor.Array) error {
	if err := o.b.owns(out); err != nil {
		return err
	}
	shape := out.Shape()
	if len(shape) != 1 || shape[0] < 1 {
		return errors.Wrapf(tensor.ErrInvalidArgument,
			"linspace destination must be 1-d with at least one element, got shape %v", shape)
	}
	n := shape[0]
	if n == 1 {
		out.Store(out.Offset(), tensor.NewScalar(start))
		return nil
	}
	if out.DType() == tensor.Float64 && out.IsContiguous() {
		floats.Span(out.AsFloat64(), start, stop)
		return nil
	}
	step := (stop - start) / float64(n-1)
	i := 0
	out.ForEachOffset(func(off int) {
		v := start + float64(i)*step
		if i == n-1 {
			v = stop
		}
		out.Store(off, tensor.NewScalar(v))
		i++
	})
	return nil
}
