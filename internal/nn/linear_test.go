package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ml/lumen/internal/backend/cpu"
	"github.com/lumen-ml/lumen/internal/tensor"
)

func rawFromFloat32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

// newTestLinear builds a 3->2 layer with fixed weight [[1,1,1],[2,2,2]]
// and bias [0,1].
func newTestLinear(t *testing.T, backend *cpu.Backend) *Linear[*cpu.Backend] {
	t.Helper()
	layer, err := NewLinear(3, 2, LinearConfig{
		InitialWeight: rawFromFloat32(t, []float32{1, 1, 1, 2, 2, 2}, tensor.Shape{2, 3}),
		InitialBias:   rawFromFloat32(t, []float32{0, 1}, tensor.Shape{2}),
	}, backend)
	require.NoError(t, err)
	return layer
}

func TestNewLinear_Defaults(t *testing.T) {
	backend := cpu.New()

	layer, err := NewLinear(4, 3, LinearConfig{}, backend)
	require.NoError(t, err)

	assert.Equal(t, 4, layer.InFeatures())
	assert.Equal(t, 3, layer.OutFeatures())
	assert.Equal(t, tensor.Shape{3, 4}, layer.Weight().Tensor().Shape())

	require.NotNil(t, layer.Bias())
	assert.Equal(t, tensor.Shape{3}, layer.Bias().Tensor().Shape())
	for _, v := range layer.Bias().Tensor().Data() {
		assert.Zero(t, v)
	}

	assert.Len(t, layer.Parameters(), 2)

	// Gradient accumulators start zeroed with parameter shapes.
	assert.Equal(t, tensor.Shape{3, 4}, layer.Weight().Grad().Shape())
	for _, v := range layer.Weight().Grad().Data() {
		assert.Zero(t, v)
	}
}

func TestNewLinear_NoBias(t *testing.T) {
	backend := cpu.New()

	layer, err := NewLinear(3, 2, LinearConfig{NoBias: true}, backend)
	require.NoError(t, err)

	assert.Nil(t, layer.Bias())
	assert.Len(t, layer.Parameters(), 1)
}

func TestNewLinear_BiasValue(t *testing.T) {
	backend := cpu.New()

	layer, err := NewLinear(3, 2, LinearConfig{BiasValue: 0.5}, backend)
	require.NoError(t, err)

	assert.Equal(t, []float32{0.5, 0.5}, layer.Bias().Tensor().Data())
}

func TestNewLinear_WeightScale(t *testing.T) {
	backend := cpu.New()

	// With 10000 samples the empirical std should land near
	// scale * sqrt(1/in) = 2 * sqrt(1/100) = 0.2.
	layer, err := NewLinear(100, 100, LinearConfig{WeightScale: 2, NoBias: true}, backend)
	require.NoError(t, err)

	data := layer.Weight().Tensor().Data()
	var sumSq float64
	for _, v := range data {
		sumSq += float64(v) * float64(v)
	}
	std := math.Sqrt(sumSq / float64(len(data)))
	assert.InDelta(t, 0.2, std, 0.02)
}

func TestNewLinear_ConstructionErrors(t *testing.T) {
	backend := cpu.New()

	t.Run("NonPositiveSizes", func(t *testing.T) {
		_, err := NewLinear(0, 2, LinearConfig{}, backend)
		assert.Error(t, err)
	})

	t.Run("InitialWeightShape", func(t *testing.T) {
		_, err := NewLinear(3, 2, LinearConfig{
			InitialWeight: rawFromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2}),
		}, backend)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "initial weight shape")
	})

	t.Run("InitialBiasShape", func(t *testing.T) {
		_, err := NewLinear(3, 2, LinearConfig{
			InitialBias: rawFromFloat32(t, []float32{1, 2, 3}, tensor.Shape{3}),
		}, backend)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "initial bias shape")
	})
}

func TestLinear_Forward(t *testing.T) {
	backend := cpu.New()
	layer := newTestLinear(t, backend)

	x := tensor.Ones[float32](tensor.Shape{4, 3}, backend)

	y, err := layer.Forward(x)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{4, 2}, y.Shape())
	// Each row: [1+1+1+0, 2+2+2+1] = [3, 7].
	for row := range 4 {
		assert.InDelta(t, 3.0, y.At(row, 0), 1e-6)
		assert.InDelta(t, 7.0, y.At(row, 1), 1e-6)
	}
}

func TestLinear_ForwardNoBias(t *testing.T) {
	backend := cpu.New()

	layer, err := NewLinear(3, 2, LinearConfig{
		InitialWeight: rawFromFloat32(t, []float32{1, 1, 1, 2, 2, 2}, tensor.Shape{2, 3}),
		NoBias:        true,
	}, backend)
	require.NoError(t, err)

	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)

	y, err := layer.Forward(x)
	require.NoError(t, err)

	assert.Equal(t, []float32{3, 6, 3, 6}, y.Data())
}

func TestLinear_ForwardValidation(t *testing.T) {
	backend := cpu.New()
	layer := newTestLinear(t, backend)

	t.Run("Rank1", func(t *testing.T) {
		x := tensor.Ones[float32](tensor.Shape{3}, backend)
		_, err := layer.Forward(x)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 2 dimensions")
	})

	t.Run("FeatureMismatch", func(t *testing.T) {
		x := tensor.Ones[float32](tensor.Shape{4, 5}, backend)
		_, err := layer.Forward(x)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "in_size")
	})

	t.Run("NonFloat32", func(t *testing.T) {
		// A float64-backed raw rejects before any matrix multiply runs.
		raw, err := tensor.NewRaw(tensor.Shape{4, 3}, tensor.Float64, tensor.CPU)
		require.NoError(t, err)
		x := tensor.New[float32](raw, backend)

		_, err = layer.Forward(x)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "float32")
	})
}

func TestLinear_Backward(t *testing.T) {
	backend := cpu.New()
	layer := newTestLinear(t, backend)

	// x = [[1, 2, 3], [4, 5, 6]], gy = [[1, 0], [0, 1]]
	x := tensor.New[float32](rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}), backend)
	gy := tensor.New[float32](rawFromFloat32(t, []float32{1, 0, 0, 1}, tensor.Shape{2, 2}), backend)

	gx, err := layer.Backward(x, gy)
	require.NoError(t, err)

	// gx = gy @ W = [[1, 1, 1], [2, 2, 2]]
	assert.Equal(t, tensor.Shape{2, 3}, gx.Shape())
	assert.Equal(t, []float32{1, 1, 1, 2, 2, 2}, gx.Data())

	// gW = gy^T @ x = [[1, 2, 3], [4, 5, 6]]
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, layer.Weight().Grad().Data())

	// gb = column sums of gy = [1, 1]
	assert.Equal(t, []float32{1, 1}, layer.Bias().Grad().Data())
}

func TestLinear_GradientAccumulation(t *testing.T) {
	backend := cpu.New()
	layer := newTestLinear(t, backend)

	x := tensor.New[float32](rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}), backend)
	gy := tensor.New[float32](rawFromFloat32(t, []float32{1, 0, 0, 1}, tensor.Shape{2, 2}), backend)

	_, err := layer.Backward(x, gy)
	require.NoError(t, err)
	first := append([]float32(nil), layer.Weight().Grad().Data()...)

	// Second backward without zeroing doubles every accumulator entry.
	_, err = layer.Backward(x, gy)
	require.NoError(t, err)

	second := layer.Weight().Grad().Data()
	for i := range first {
		assert.InDelta(t, 2*first[i], second[i], 1e-6)
	}
	assert.Equal(t, []float32{2, 2}, layer.Bias().Grad().Data())

	// ZeroGrad resets everything in place.
	layer.ZeroGrad()
	for _, v := range layer.Weight().Grad().Data() {
		assert.Zero(t, v)
	}
	for _, v := range layer.Bias().Grad().Data() {
		assert.Zero(t, v)
	}
}

func TestLinear_HighRankInput(t *testing.T) {
	backend := cpu.New()

	// in = 6 = 2*3 flattened from the trailing dimensions of (2, 2, 3).
	layer, err := NewLinear(6, 2, LinearConfig{
		InitialWeight: rawFromFloat32(t, []float32{
			1, 1, 1, 1, 1, 1,
			1, 2, 3, 4, 5, 6,
		}, tensor.Shape{2, 6}),
		NoBias: true,
	}, backend)
	require.NoError(t, err)

	x := tensor.Ones[float32](tensor.Shape{2, 2, 3}, backend)

	y, err := layer.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.Equal(t, []float32{6, 21, 6, 21}, y.Data())

	// The input gradient comes back in the original high-rank shape.
	gy := tensor.Ones[float32](tensor.Shape{2, 2}, backend)
	gx, err := layer.Backward(x, gy)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2, 3}, gx.Shape())
}

func TestLinear_BackwardValidation(t *testing.T) {
	backend := cpu.New()
	layer := newTestLinear(t, backend)

	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)

	t.Run("BatchMismatch", func(t *testing.T) {
		gy := tensor.Ones[float32](tensor.Shape{3, 2}, backend)
		_, err := layer.Backward(x, gy)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch")
	})

	t.Run("WidthMismatch", func(t *testing.T) {
		gy := tensor.Ones[float32](tensor.Shape{2, 5}, backend)
		_, err := layer.Backward(x, gy)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out_size")
	})

	t.Run("Rank1Grad", func(t *testing.T) {
		gy := tensor.Ones[float32](tensor.Shape{2}, backend)
		_, err := layer.Backward(x, gy)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2-dimensional")
	})
}

func TestLinear_Node(t *testing.T) {
	backend := cpu.New()
	layer := newTestLinear(t, backend)
	node := layer.Node()

	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)

	y, err := node.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())

	gy := tensor.Ones[float32](tensor.Shape{2, 2}, backend)
	grads, err := node.Backward([]*tensor.Tensor[float32, *cpu.Backend]{x}, gy)
	require.NoError(t, err)
	require.Len(t, grads, 1)
	assert.Equal(t, tensor.Shape{2, 3}, grads[0].Shape())

	_, err = node.Forward(x, x)
	assert.Error(t, err)
}

func TestLinear_ToDevice(t *testing.T) {
	backend := cpu.New()
	layer := newTestLinear(t, backend)

	layer.ToDevice(tensor.WebGPU)

	assert.Equal(t, tensor.WebGPU, layer.Weight().Tensor().Device())
	assert.Equal(t, tensor.WebGPU, layer.Weight().Grad().Device())
	assert.Equal(t, tensor.WebGPU, layer.Bias().Tensor().Device())
}
