package nn

import (
	"fmt"
	"math"

	"github.com/lumen-ml/lumen/internal/check"
	"github.com/lumen-ml/lumen/internal/tensor"
)

// LinearConfig holds construction options for a Linear layer.
// The zero value gives the defaults: weight scale 1, bias initialized to 0,
// bias present, weight sampled from a scaled Gaussian.
type LinearConfig struct {
	// WeightScale scales the standard deviation of the Gaussian weight
	// initialization (std = WeightScale * sqrt(1/inSize)). Default: 1.
	WeightScale float32

	// BiasValue is the constant the bias vector is initialized to. Default: 0.
	BiasValue float32

	// NoBias omits the bias entirely. The layer then has no bias state for
	// its lifetime.
	NoBias bool

	// InitialWeight, if set, is adopted directly as the weight (no copy).
	// Must be float32 with shape (outSize, inSize).
	InitialWeight *tensor.RawTensor

	// InitialBias, if set, is adopted directly as the bias (no copy).
	// Must be float32 with shape (outSize,). Takes precedence over NoBias.
	InitialBias *tensor.RawTensor
}

// Linear implements a fully connected (affine) layer.
//
// The layer owns a weight matrix W with shape [outSize, inSize], an optional
// bias vector b with shape [outSize], and their gradient accumulators.
// Forward computes Y = X @ W^T (+ b broadcast across the batch); Backward
// accumulates dW and db and returns dX.
//
// Inputs of rank above 2 are accepted: the leading dimension is the batch
// dimension and the remaining dimensions are flattened into one feature
// dimension, restored on the gradient returned by Backward.
//
// Example:
//
//	backend := cpu.New()
//	layer, err := nn.NewLinear(784, 128, nn.LinearConfig{}, backend)
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [outSize, inSize]
	bias        *Parameter[B] // [outSize], nil when no bias
	backend     B
}

// NewLinear creates a new Linear layer.
//
// Unless cfg.InitialWeight is given, the weight is sampled i.i.d. from a
// zero-mean Gaussian with standard deviation cfg.WeightScale * sqrt(1/inSize).
// Explicit initial arrays are adopted directly and must already have the
// right shape and dtype; a mismatch fails construction.
func NewLinear[B tensor.Backend](inSize, outSize int, cfg LinearConfig, backend B) (*Linear[B], error) {
	if inSize <= 0 || outSize <= 0 {
		return nil, fmt.Errorf("linear: sizes must be positive, got in=%d out=%d", inSize, outSize)
	}
	if cfg.WeightScale == 0 {
		cfg.WeightScale = 1
	}

	weightShape := tensor.Shape{outSize, inSize}
	var weight *tensor.Tensor[float32, B]
	if cfg.InitialWeight != nil {
		if !cfg.InitialWeight.Shape().Equal(weightShape) {
			return nil, fmt.Errorf("linear: initial weight shape %v, want %v", cfg.InitialWeight.Shape(), weightShape)
		}
		if cfg.InitialWeight.DType() != tensor.Float32 {
			return nil, fmt.Errorf("linear: initial weight dtype %s, want float32", cfg.InitialWeight.DType())
		}
		weight = tensor.New[float32, B](cfg.InitialWeight, backend)
	} else {
		std := float64(cfg.WeightScale) * math.Sqrt(1/float64(inSize))
		weight = Gaussian(weightShape, std, backend)
	}

	biasShape := tensor.Shape{outSize}
	var bias *tensor.Tensor[float32, B]
	switch {
	case cfg.InitialBias != nil:
		if !cfg.InitialBias.Shape().Equal(biasShape) {
			return nil, fmt.Errorf("linear: initial bias shape %v, want %v", cfg.InitialBias.Shape(), biasShape)
		}
		if cfg.InitialBias.DType() != tensor.Float32 {
			return nil, fmt.Errorf("linear: initial bias dtype %s, want float32", cfg.InitialBias.DType())
		}
		bias = tensor.New[float32, B](cfg.InitialBias, backend)
	case !cfg.NoBias:
		bias = Full(biasShape, cfg.BiasValue, backend)
	}

	l := &Linear[B]{
		inFeatures:  inSize,
		outFeatures: outSize,
		weight:      NewParameter("weight", weight),
		backend:     backend,
	}
	if bias != nil {
		l.bias = NewParameter("bias", bias)
	}
	return l, nil
}

// checkInput validates the forward input contract: float32 dtype, rank at
// least 2, and trailing dimensions multiplying out to inFeatures.
func (l *Linear[B]) checkInput(x *tensor.Tensor[float32, B]) error {
	c := check.New("linear")
	c.Expect(x.Raw().DType() == tensor.Float32, "input dtype must be float32, got %s", x.Raw().DType())
	c.Expect(len(x.Shape()) >= 2, "input must have at least 2 dimensions, got shape %v", x.Shape())
	c.Expect(x.Shape().FlatDim() == l.inFeatures,
		"product of input dimensions after batch is %d, want in_size %d (shape %v)",
		x.Shape().FlatDim(), l.inFeatures, x.Shape())
	return c.Err()
}

// asMat returns x viewed as a (batch, inFeatures) matrix.
func (l *Linear[B]) asMat(x *tensor.Tensor[float32, B]) *tensor.RawTensor {
	raw := x.Raw()
	if len(raw.Shape()) == 2 {
		return raw
	}
	return l.backend.Reshape(raw, tensor.Shape{raw.Shape()[0], l.inFeatures})
}

// Forward computes Y = X @ W^T (+ b).
//
// Input shape: (batch, ...) with trailing dimensions multiplying out to
// inSize. Output shape: (batch, outSize). The parameters are read-only
// during forward; validation failures return an error before any
// computation runs.
func (l *Linear[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := l.checkInput(x); err != nil {
		return nil, err
	}

	xMat := l.asMat(x)
	// (batch, in) @ (out, in)^T = (batch, out)
	y := l.backend.MatMul(xMat, l.weight.Tensor().Raw(), false, true)
	if l.bias != nil {
		// (batch, out) + (out,) broadcasts across the batch dimension.
		y = l.backend.Add(y, l.bias.Tensor().Raw())
	}
	return tensor.New[float32, B](y, l.backend), nil
}

// Backward accumulates parameter gradients and returns the gradient with
// respect to the input.
//
// Given the original input x and the upstream gradient gy with shape
// (batch, outSize):
//
//	gradW += gy^T @ X_flat
//	gradb += sum over the batch dimension of gy   (if bias exists)
//
// and the returned input gradient is gy @ W reshaped to x's original shape.
// Gradients are additive across repeated Backward calls; use ZeroGrad to
// reset them between optimization steps.
func (l *Linear[B]) Backward(x, gy *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := l.checkInput(x); err != nil {
		return nil, err
	}

	c := check.New("linear backward")
	c.Expect(gy.Raw().DType() == tensor.Float32, "output gradient dtype must be float32, got %s", gy.Raw().DType())
	c.Expect(len(gy.Shape()) == 2, "output gradient must be 2-dimensional, got shape %v", gy.Shape())
	if err := c.Err(); err != nil {
		return nil, err
	}
	c.Expect(gy.Shape()[0] == x.Shape()[0],
		"output gradient batch %d does not match input batch %d", gy.Shape()[0], x.Shape()[0])
	c.Expect(gy.Shape()[1] == l.outFeatures,
		"output gradient width %d, want out_size %d", gy.Shape()[1], l.outFeatures)
	if err := c.Err(); err != nil {
		return nil, err
	}

	xMat := l.asMat(x)

	// (batch, out)^T @ (batch, in) = (out, in)
	gw := l.backend.MatMul(gy.Raw(), xMat, true, false)
	l.weight.AddGrad(gw)

	if l.bias != nil {
		gb := l.backend.SumDim(gy.Raw(), 0, false)
		l.bias.AddGrad(gb)
	}

	// (batch, out) @ (out, in) = (batch, in), restored to x's shape.
	gx := l.backend.MatMul(gy.Raw(), l.weight.Tensor().Raw(), false, false)
	gx = l.backend.Reshape(gx, x.Shape())
	return tensor.New[float32, B](gx, l.backend), nil
}

// ZeroGrad resets all gradient accumulators to zero.
func (l *Linear[B]) ZeroGrad() {
	l.weight.ZeroGrad()
	if l.bias != nil {
		l.bias.ZeroGrad()
	}
}

// Parameters returns the trainable parameters: [weight, bias] when the bias
// exists, otherwise [weight].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil when the layer has no bias.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// ToDevice migrates the layer's parameters and gradient accumulators to the
// given device.
func (l *Linear[B]) ToDevice(device tensor.Device) {
	l.weight.toDevice(device)
	if l.bias != nil {
		l.bias.toDevice(device)
	}
}

// Node returns the layer as a graph-node Function. The node accepts exactly
// one input tensor and returns exactly one input gradient; the parameter
// gradients stay on the layer's accumulators.
func (l *Linear[B]) Node() Function[B] {
	return linearNode[B]{l}
}

type linearNode[B tensor.Backend] struct {
	l *Linear[B]
}

func (n linearNode[B]) Forward(inputs ...*tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	c := check.New("linear")
	c.Expect(len(inputs) == 1, "takes exactly 1 input tensor, got %d", len(inputs))
	if err := c.Err(); err != nil {
		return nil, err
	}
	return n.l.Forward(inputs[0])
}

func (n linearNode[B]) Backward(inputs []*tensor.Tensor[float32, B], outputGrad *tensor.Tensor[float32, B]) ([]*tensor.Tensor[float32, B], error) {
	c := check.New("linear backward")
	c.Expect(len(inputs) == 1, "takes exactly 1 input tensor, got %d", len(inputs))
	if err := c.Err(); err != nil {
		return nil, err
	}
	gx, err := n.l.Backward(inputs[0], outputGrad)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor[float32, B]{gx}, nil
}
