package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ml/lumen/internal/tensor"
)

func rawFromFloat32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func TestBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestBackend_Add(t *testing.T) {
	backend := New()

	t.Run("SameShape", func(t *testing.T) {
		a := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		b := rawFromFloat32(t, []float32{10, 11, 12, 13, 14, 15}, tensor.Shape{2, 3})

		result := backend.Add(a, b)

		assert.Equal(t, []float32{11, 13, 15, 17, 19, 21}, result.AsFloat32())
	})

	t.Run("BroadcastVector", func(t *testing.T) {
		// (2, 3) + (3,) broadcasts the vector across rows.
		a := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		b := rawFromFloat32(t, []float32{10, 20, 30}, tensor.Shape{3})

		result := backend.Add(a, b)

		assert.Equal(t, tensor.Shape{2, 3}, result.Shape())
		assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, result.AsFloat32())
	})

	t.Run("IncompatibleShapes", func(t *testing.T) {
		a := rawFromFloat32(t, []float32{1, 2, 3}, tensor.Shape{3})
		b := rawFromFloat32(t, []float32{1, 2}, tensor.Shape{2})

		assert.Panics(t, func() { backend.Add(a, b) })
	})
}

func TestBackend_Sub(t *testing.T) {
	backend := New()

	a := rawFromFloat32(t, []float32{5, 7, 9}, tensor.Shape{3})
	b := rawFromFloat32(t, []float32{1, 2, 3}, tensor.Shape{3})

	result := backend.Sub(a, b)

	assert.Equal(t, []float32{4, 5, 6}, result.AsFloat32())
}

func TestBackend_Mul(t *testing.T) {
	backend := New()

	a := rawFromFloat32(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := rawFromFloat32(t, []float32{4, 5, 6}, tensor.Shape{3})

	result := backend.Mul(a, b)

	assert.Equal(t, []float32{4, 10, 18}, result.AsFloat32())
}

func TestBackend_MulScalar(t *testing.T) {
	backend := New()

	x := rawFromFloat32(t, []float32{1, -2, 3}, tensor.Shape{3})

	result := backend.MulScalar(x, 2.5)

	assert.Equal(t, []float32{2.5, -5, 7.5}, result.AsFloat32())
}

func TestBackend_MatMul(t *testing.T) {
	backend := New()

	// A = [[1, 2], [3, 4]], B = [[5, 6], [7, 8]]
	a := rawFromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := rawFromFloat32(t, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})

	t.Run("Plain", func(t *testing.T) {
		result := backend.MatMul(a, b, false, false)

		// [[1*5+2*7, 1*6+2*8], [3*5+4*7, 3*6+4*8]]
		assert.Equal(t, []float32{19, 22, 43, 50}, result.AsFloat32())
	})

	t.Run("TransposeA", func(t *testing.T) {
		result := backend.MatMul(a, b, true, false)

		// A^T = [[1, 3], [2, 4]]
		assert.Equal(t, []float32{26, 30, 38, 44}, result.AsFloat32())
	})

	t.Run("TransposeB", func(t *testing.T) {
		result := backend.MatMul(a, b, false, true)

		// B^T = [[5, 7], [6, 8]]
		assert.Equal(t, []float32{17, 23, 39, 53}, result.AsFloat32())
	})

	t.Run("Rectangular", func(t *testing.T) {
		// (2, 3) @ (3, 2) = (2, 2)
		x := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		y := rawFromFloat32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

		result := backend.MatMul(x, y, false, false)

		assert.Equal(t, tensor.Shape{2, 2}, result.Shape())
		assert.Equal(t, []float32{58, 64, 139, 154}, result.AsFloat32())
	})

	t.Run("InnerDimMismatch", func(t *testing.T) {
		x := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		y := rawFromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

		assert.Panics(t, func() { backend.MatMul(x, y, false, false) })
	})
}

func TestBackend_SumDim(t *testing.T) {
	backend := New()

	// [[1, 2, 3], [4, 5, 6]]
	x := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	t.Run("Dim0", func(t *testing.T) {
		result := backend.SumDim(x, 0, false)

		assert.Equal(t, tensor.Shape{3}, result.Shape())
		assert.Equal(t, []float32{5, 7, 9}, result.AsFloat32())
	})

	t.Run("Dim1", func(t *testing.T) {
		result := backend.SumDim(x, 1, false)

		assert.Equal(t, tensor.Shape{2}, result.Shape())
		assert.Equal(t, []float32{6, 15}, result.AsFloat32())
	})

	t.Run("KeepDim", func(t *testing.T) {
		result := backend.SumDim(x, 0, true)

		assert.Equal(t, tensor.Shape{1, 3}, result.Shape())
	})
}

func TestBackend_Transpose(t *testing.T) {
	backend := New()

	x := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	result := backend.Transpose(x)

	assert.Equal(t, tensor.Shape{3, 2}, result.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, result.AsFloat32())
}

func TestBackend_Reshape(t *testing.T) {
	backend := New()

	x := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	result := backend.Reshape(x, tensor.Shape{3, 2})

	assert.Equal(t, tensor.Shape{3, 2}, result.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, result.AsFloat32())
}

func TestBackend_Float64(t *testing.T) {
	backend := New()

	a, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	b, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(a.AsFloat64(), []float64{1, 2, 3, 4})
	copy(b.AsFloat64(), []float64{5, 6, 7, 8})

	sum := backend.Add(a, b)
	assert.Equal(t, []float64{6, 8, 10, 12}, sum.AsFloat64())

	prod := backend.MatMul(a, b, false, false)
	assert.Equal(t, []float64{19, 22, 43, 50}, prod.AsFloat64())
}
