package nn

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// initSource seeds the weight-init sampler once per process, like the
// tensor package's creation source.
var initSource = rand.NewPCG(uint64(time.Now().UnixNano()), 1)

// Gaussian initializes a tensor with i.i.d. samples from N(0, std²).
//
// The affine layer uses std = wscale * sqrt(1/inSize), which keeps the
// output variance independent of the input width.
func Gaussian[B tensor.Backend](shape tensor.Shape, std float64, backend B) *tensor.Tensor[float32, B] {
	normal := distuv.Normal{
		Mu:    0,
		Sigma: std,
		Src:   initSource,
	}

	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		data[i] = float32(normal.Rand())
	}
	return t
}

// Zeros creates a zero-filled tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Full creates a tensor filled with a constant value.
// This is how the affine layer initializes its bias vector.
func Full[B tensor.Backend](shape tensor.Shape, value float32, backend B) *tensor.Tensor[float32, B] {
	return tensor.Full[float32](shape, value, backend)
}
