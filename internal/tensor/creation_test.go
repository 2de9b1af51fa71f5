package tensor_test

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-ml/axon/internal/backend/cpu"
	"github.com/axon-ml/axon/internal/graph"
	"github.com/axon-ml/axon/internal/tensor"
)

var (
	cpu0 = tensor.Device{Kind: "cpu", Ordinal: 0}
	cpu1 = tensor.Device{Kind: "cpu", Ordinal: 1}
)

func TestMain(m *testing.M) {
	// cpu:0 registers first and becomes the process default.
	if err := tensor.RegisterBackend(cpu.New()); err != nil {
		panic(err)
	}
	if err := tensor.RegisterBackend(cpu.NewWithOrdinal(1)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// values collects every element in row-major order as float64.
func values(a *tensor.Array) []float64 {
	out := make([]float64, 0, a.NumElements())
	a.ForEachOffset(func(off int) {
		out = append(out, a.Load(off).Float64())
	})
	return out
}

func TestEmptyDefaults(t *testing.T) {
	a, err := tensor.Empty(tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, a.DType())
	assert.Equal(t, cpu0, a.Device())
	assert.True(t, a.IsContiguous())
	assert.Equal(t, 6, a.NumElements())
}

func TestEmptyNegativeExtent(t *testing.T) {
	_, err := tensor.Empty(tensor.Shape{2, -1})
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
}

func TestEmptyUnregisteredDevice(t *testing.T) {
	_, err := tensor.Empty(tensor.Shape{2}, tensor.WithDevice(tensor.Device{Kind: "cuda"}))
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
}

func TestEmptyStridedCustomLayout(t *testing.T) {
	// Column-major 2x3 float64.
	a, err := tensor.EmptyStrided(tensor.Shape{2, 3}, tensor.Float64, tensor.Strides{8, 16}, cpu0)
	require.NoError(t, err)
	assert.False(t, a.IsContiguous())
	a.SetAt(tensor.NewScalar(9.0), 1, 2)
	assert.Equal(t, 9.0, a.At(1, 2).Float64())
}

func TestFull(t *testing.T) {
	a, err := tensor.Full(tensor.Shape{2, 2}, tensor.NewScalar(3.5))
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, a.DType(), "dtype defaults to the fill value's")
	assert.Equal(t, []float64{3.5, 3.5, 3.5, 3.5}, values(a))

	h, err := tensor.Full(tensor.Shape{3}, tensor.NewScalar(3.5), tensor.WithDType(tensor.Float16))
	require.NoError(t, err)
	assert.Equal(t, tensor.Float16, h.DType())
	assert.Equal(t, []float64{3.5, 3.5, 3.5}, values(h))
}

func TestZerosOnes(t *testing.T) {
	z, err := tensor.Zeros(tensor.Shape{4})
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, z.DType())
	assert.Equal(t, []float64{0, 0, 0, 0}, values(z))

	o, err := tensor.Ones(tensor.Shape{3}, tensor.WithDType(tensor.Int32))
	require.NoError(t, err)
	assert.Equal(t, tensor.Int32, o.DType())
	assert.Equal(t, []float64{1, 1, 1}, values(o))

	h, err := tensor.Ones(tensor.Shape{2}, tensor.WithDType(tensor.Float16))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, values(h))
}

func TestArange(t *testing.T) {
	a, err := tensor.Arange(0, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, tensor.Int64, a.DType())
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, values(a))

	down, err := tensor.Arange(5, 2, -1)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 4, 3}, values(down))

	empty, err := tensor.Arange(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NumElements())

	away, err := tensor.Arange(0, -3, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, away.NumElements(), "step moving away from stop yields an empty range")

	_, err = tensor.Arange(0, 5, 0)
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
}

func TestArangeFloat(t *testing.T) {
	a, err := tensor.Arange(0.0, 1.0, 0.25)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, a.DType())
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75}, values(a))

	f32, err := tensor.Arange(float32(1), float32(4), float32(1))
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, f32.DType())
	assert.Equal(t, []float64{1, 2, 3}, values(f32))
}

func TestArangeShorthands(t *testing.T) {
	a, err := tensor.ArangeTo(10)
	require.NoError(t, err)
	assert.Equal(t, 10, a.NumElements())
	assert.Equal(t, 9.0, a.At(9).Float64())

	b, err := tensor.ArangeFrom(3, 6)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 5}, values(b))
}

func TestArangeDTypeOverride(t *testing.T) {
	a, err := tensor.Arange(0, 4, 1, tensor.WithDType(tensor.Uint8))
	require.NoError(t, err)
	assert.Equal(t, tensor.Uint8, a.DType())
	assert.Equal(t, []float64{0, 1, 2, 3}, values(a))
}

func TestLinspace(t *testing.T) {
	a, err := tensor.Linspace(0, 1, tensor.WithNum(5))
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, a.DType())
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, values(a))

	open, err := tensor.Linspace(0, 1, tensor.WithNum(5), tensor.WithEndpoint(false))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.2, 0.4, 0.6, 0.8}, values(open), 1e-6)

	one, err := tensor.Linspace(3, 7, tensor.WithNum(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, values(one))

	zero, err := tensor.Linspace(0, 1, tensor.WithNum(0))
	require.NoError(t, err)
	assert.Equal(t, 0, zero.NumElements())

	_, err = tensor.Linspace(0, 1, tensor.WithNum(-1))
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
}

func TestLinspaceDefaultNum(t *testing.T) {
	a, err := tensor.Linspace(0, 1)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{50}, a.Shape())
	assert.Equal(t, 0.0, a.At(0).Float64())
	assert.Equal(t, 1.0, a.At(49).Float64(), "endpoint is hit exactly")
}

func TestLinspaceFloat64(t *testing.T) {
	a, err := tensor.Linspace(2, -2, tensor.WithNum(5), tensor.WithDType(tensor.Float64))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 0, -1, -2}, values(a))
}

func TestIdentity(t *testing.T) {
	a, err := tensor.Identity(3)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 3}, a.Shape())
	assert.Equal(t, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}, values(a))

	empty, err := tensor.Identity(0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{0, 0}, empty.Shape())

	_, err = tensor.Identity(-1)
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
}

func TestEyeMatchesIdentity(t *testing.T) {
	for n := 0; n < 4; n++ {
		id, err := tensor.Identity(n)
		require.NoError(t, err)
		eye, err := tensor.Eye(n)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(values(id), values(eye)), "n=%d", n)
	}
}

func TestEyeRectangular(t *testing.T) {
	a, err := tensor.Eye(2, tensor.WithColumns(3))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, a.Shape())
	assert.Equal(t, []float64{
		1, 0, 0,
		0, 1, 0,
	}, values(a))

	up, err := tensor.Eye(3, tensor.WithColumns(3), tensor.WithDiagonal(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{
		0, 1, 0,
		0, 0, 1,
		0, 0, 0,
	}, values(up))

	down, err := tensor.Eye(3, tensor.WithDiagonal(-1))
	require.NoError(t, err)
	assert.Equal(t, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}, values(down))

	// Diagonal entirely off the matrix still succeeds, all zeros.
	off, err := tensor.Eye(2, tensor.WithDiagonal(5))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, values(off))

	_, err = tensor.Eye(-1)
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
	_, err = tensor.Eye(2, tensor.WithColumns(-3))
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
}

func TestDiagBuild(t *testing.T) {
	v, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	m, err := tensor.Diag(v, 0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 3}, m.Shape())
	assert.Equal(t, []float64{
		1, 0, 0,
		0, 2, 0,
		0, 0, 3,
	}, values(m))

	up, err := tensor.Diag(v, 1)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 4}, up.Shape())
	assert.Equal(t, 1.0, up.At(0, 1).Float64())
	assert.Equal(t, 3.0, up.At(2, 3).Float64())

	down, err := tensor.Diag(v, -2)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{5, 5}, down.Shape())
	assert.Equal(t, 1.0, down.At(2, 0).Float64())
	assert.Equal(t, 3.0, down.At(4, 2).Float64())
}

func TestDiagExtractIsView(t *testing.T) {
	m, err := tensor.FromSlice([]float32{
		1, 2, 3,
		4, 5, 6,
	}, tensor.Shape{2, 3})
	require.NoError(t, err)

	d, err := tensor.Diag(m, 0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2}, d.Shape())
	assert.Equal(t, []float64{1, 5}, values(d))

	// The diagonal aliases the matrix, not a copy of it.
	m.SetAt(tensor.NewScalar(float32(50)), 1, 1)
	assert.Equal(t, 50.0, d.At(1).Float64())

	up, err := tensor.Diag(m, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 6}, values(up))

	down, err := tensor.Diag(m, -1)
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, values(down))

	empty, err := tensor.Diag(m, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NumElements())

	bad, err := tensor.Empty(tensor.Shape{2, 2, 2})
	require.NoError(t, err)
	_, err = tensor.Diag(bad, 0)
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
}

func TestDiagRoundTrip(t *testing.T) {
	v, err := tensor.FromSlice([]int64{7, 8, 9}, tensor.Shape{3})
	require.NoError(t, err)
	for k := -2; k <= 2; k++ {
		m, err := tensor.Diag(v, k)
		require.NoError(t, err)
		back, err := tensor.Diag(m, k)
		require.NoError(t, err)
		assert.Equal(t, values(v), values(back), "k=%d", k)
	}
}

func TestDiagflatFlattens(t *testing.T) {
	m, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	d, err := tensor.Diagflat(m, 0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 4}, d.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4}, []float64{
		d.At(0, 0).Float64(), d.At(1, 1).Float64(), d.At(2, 2).Float64(), d.At(3, 3).Float64(),
	})
}

func TestCopy(t *testing.T) {
	src, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	c, err := tensor.Copy(src)
	require.NoError(t, err)
	assert.Equal(t, values(src), values(c))
	assert.True(t, c.IsContiguous())
	assert.Equal(t, src.Device(), c.Device())

	c.SetAt(tensor.NewScalar(float32(99)), 0)
	assert.Equal(t, 1.0, src.At(0).Float64(), "copy does not alias the source")
}

func TestCopyConnectsToActiveGraphs(t *testing.T) {
	src, err := tensor.Zeros(tensor.Shape{2})
	require.NoError(t, err)

	g, done := graph.Scope("train")
	defer done()

	c, err := tensor.Copy(src)
	require.NoError(t, err)
	assert.True(t, c.ConnectedTo(g.ID()), "copy joins graphs created after its source")
	assert.False(t, src.ConnectedTo(g.ID()))
}

func TestCopyStridedSource(t *testing.T) {
	m, err := tensor.FromSlice([]float32{
		1, 2,
		3, 4,
	}, tensor.Shape{2, 2})
	require.NoError(t, err)
	d, err := tensor.Diag(m, 0)
	require.NoError(t, err)

	c, err := tensor.Copy(d)
	require.NoError(t, err)
	assert.True(t, c.IsContiguous())
	assert.Equal(t, []float64{1, 4}, values(c))
}

func TestAsContiguous(t *testing.T) {
	a, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	same, err := tensor.AsContiguous(a, tensor.Float32)
	require.NoError(t, err)
	assert.Same(t, a, same, "already-contiguous input is returned unchanged")

	m, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	d, err := tensor.Diag(m, 0)
	require.NoError(t, err)
	require.False(t, d.IsContiguous())

	c, err := tensor.AsContiguous(d, tensor.Float32)
	require.NoError(t, err)
	assert.True(t, c.IsContiguous())
	assert.Equal(t, []float64{1, 4}, values(c))
}

func TestAsContiguousConvertsDType(t *testing.T) {
	a, err := tensor.FromSlice([]float32{1.5, -2.5, 3}, tensor.Shape{3})
	require.NoError(t, err)
	c, err := tensor.AsContiguous(a, tensor.Int32)
	require.NoError(t, err)
	assert.Equal(t, tensor.Int32, c.DType())
	assert.Equal(t, []float64{1, -2, 3}, values(c), "float to int truncates toward zero")
}

func TestAsContiguousInheritsGraphs(t *testing.T) {
	g, done := graph.Scope("eval")
	defer done()

	a, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	a.Connect(g.ID())

	c, err := tensor.AsContiguous(a, tensor.Float64)
	require.NoError(t, err)
	assert.True(t, c.ConnectedTo(g.ID()))
}

func TestAsContiguousArrayPromotesScalar(t *testing.T) {
	a, err := tensor.EmptyStrided(tensor.Shape{}, tensor.Float32, tensor.Strides{}, cpu0)
	require.NoError(t, err)
	a.Store(0, tensor.NewScalar(float32(7)))

	c, err := tensor.AsContiguousArray(a)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1}, c.Shape())
	assert.Equal(t, 7.0, c.At(0).Float64())
}

func TestFromHostData(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}

	a, err := tensor.FromHostData(tensor.Shape{2, 2}, tensor.Uint8, data, tensor.Strides{2, 1}, 1, cpu0)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4, 5}, values(a))

	// The bytes are copied, so later writes to the host slice are not seen.
	data[1] = 99
	assert.Equal(t, 2.0, a.At(0, 0).Float64())

	rev, err := tensor.FromHostData(tensor.Shape{3}, tensor.Uint8, data, tensor.Strides{-1}, 2, cpu0)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 99, 1}, values(rev))
}

func TestFromHostDataErrors(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}

	_, err := tensor.FromHostData(tensor.Shape{4}, tensor.Uint8, data, tensor.Strides{4}, 0, cpu0)
	assert.True(t, errors.Is(err, tensor.ErrInvalidBufferSize))

	_, err = tensor.FromHostData(tensor.Shape{2}, tensor.Uint8, data, tensor.Strides{1}, -1, cpu0)
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))

	_, err = tensor.FromHostData(tensor.Shape{2}, tensor.Uint8, data, tensor.Strides{1, 1}, 0, cpu0)
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))

	// A negative stride reaching below the buffer start is a size error too.
	_, err = tensor.FromHostData(tensor.Shape{3}, tensor.Uint8, data, tensor.Strides{-1}, 0, cpu0)
	assert.True(t, errors.Is(err, tensor.ErrInvalidBufferSize))
}

func TestFromSlice(t *testing.T) {
	a, err := tensor.FromSlice([]int64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, tensor.Int64, a.DType())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, values(a))

	b, err := tensor.FromSlice([]bool{true, false}, tensor.Shape{2})
	require.NoError(t, err)
	assert.Equal(t, tensor.Bool, b.DType())

	_, err = tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2})
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
}

func TestEmptyReduced(t *testing.T) {
	a, err := tensor.EmptyReduced(tensor.Shape{2, 3, 4}, tensor.Float32, []int{1}, false, cpu0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 4}, a.Shape())
	assert.True(t, a.IsContiguous())

	kept, err := tensor.EmptyReduced(tensor.Shape{2, 3, 4}, tensor.Float32, []int{1}, true, cpu0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 1, 4}, kept.Shape())
	assert.Equal(t, 0, kept.Strides()[1], "reduced dimensions broadcast with stride zero")

	neg, err := tensor.EmptyReduced(tensor.Shape{2, 3, 4}, tensor.Float32, []int{-1}, false, cpu0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, neg.Shape())

	_, err = tensor.EmptyReduced(tensor.Shape{2, 3}, tensor.Float32, []int{0, 0}, false, cpu0)
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
	_, err = tensor.EmptyReduced(tensor.Shape{2, 3}, tensor.Float32, []int{2}, false, cpu0)
	assert.True(t, errors.Is(err, tensor.ErrInvalidArgument))
}

func TestLikeAllocateOnDefaultDevice(t *testing.T) {
	src, err := tensor.Zeros(tensor.Shape{2, 2}, tensor.WithDType(tensor.Int32), tensor.WithDevice(cpu1))
	require.NoError(t, err)
	require.Equal(t, cpu1, src.Device())

	like, err := tensor.EmptyLike(src)
	require.NoError(t, err)
	assert.Equal(t, cpu0, like.Device(), "derived arrays go to the default device, not the template's")
	assert.Equal(t, src.Shape(), like.Shape())
	assert.Equal(t, tensor.Int32, like.DType())

	pinned, err := tensor.EmptyLike(src, tensor.WithDevice(cpu1))
	require.NoError(t, err)
	assert.Equal(t, cpu1, pinned.Device())
}

func TestLikeFills(t *testing.T) {
	src, err := tensor.Empty(tensor.Shape{3}, tensor.WithDType(tensor.Float64))
	require.NoError(t, err)

	z, err := tensor.ZerosLike(src)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, values(z))

	o, err := tensor.OnesLike(src)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, values(o))

	f, err := tensor.FullLike(src, tensor.NewScalar(2.5))
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, f.DType(), "FullLike keeps the template dtype")
	assert.Equal(t, []float64{2.5, 2.5, 2.5}, values(f))
}

func TestEmptyStridedNegativeStrides(t *testing.T) {
	a, err := tensor.EmptyStrided(tensor.Shape{3}, tensor.Uint8, tensor.Strides{-1}, cpu0)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Offset(), "origin sits past the negative span")
	for i := 0; i < 3; i++ {
		a.SetAt(tensor.NewScalar(uint8(i+1)), i)
	}
	assert.Equal(t, []float64{1, 2, 3}, values(a))

	// Mixed signs: rows descend, columns ascend.
	m, err := tensor.EmptyStrided(tensor.Shape{2, 3}, tensor.Float32, tensor.Strides{-12, 4}, cpu0)
	require.NoError(t, err)
	assert.Equal(t, 12, m.Offset())
	m.SetAt(tensor.NewScalar(float32(5)), 1, 2)
	assert.Equal(t, 5.0, m.At(1, 2).Float64())
}

func TestDiagflatLeavesSourceUnique(t *testing.T) {
	m, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	require.True(t, m.IsUnique())

	d, err := tensor.Diagflat(m, 0)
	require.NoError(t, err)
	assert.True(t, m.IsUnique(), "flattening must not retain a reference to the source buffer")
	assert.True(t, d.IsUnique())
}

func TestAsContiguousArrayLeavesSourceUnique(t *testing.T) {
	a, err := tensor.EmptyStrided(tensor.Shape{}, tensor.Float32, tensor.Strides{}, cpu0)
	require.NoError(t, err)
	a.Store(0, tensor.NewScalar(float32(7)))
	require.True(t, a.IsUnique())

	// Conversion path: the promoted view is scaffolding only.
	conv, err := tensor.AsContiguousArray(a, tensor.WithDType(tensor.Float64))
	require.NoError(t, err)
	assert.True(t, a.IsUnique())
	assert.Equal(t, 7.0, conv.At(0).Float64())

	// Same-dtype path: the result IS the promoted view and shares the buffer.
	alias, err := tensor.AsContiguousArray(a)
	require.NoError(t, err)
	assert.False(t, a.IsUnique())
	alias.Release()
	assert.True(t, a.IsUnique())
}
