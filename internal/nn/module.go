// Package nn implements differentiable layers for the Lumen library.
//
// The package centers on the affine transformation in two forms:
//
//   - Linear: a trainable layer owning its weight and optional bias,
//     with gradient accumulators updated by Backward.
//   - LinearFunction: a stateless operator where weight and bias arrive
//     as ordinary inputs, for graphs that compute their own weights.
//
// Both forms share one numerical contract: Y = X @ W^T (+ b), with the
// input's trailing dimensions flattened into a single feature dimension.
package nn

import "github.com/lumen-ml/lumen/internal/tensor"

// Function is the graph-node contract an autodiff engine drives:
// a forward pass over a tuple of inputs and a backward pass that maps the
// upstream gradient to one gradient per input, in input order.
type Function[B tensor.Backend] interface {
	Forward(inputs ...*tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error)
	Backward(inputs []*tensor.Tensor[float32, B], outputGrad *tensor.Tensor[float32, B]) ([]*tensor.Tensor[float32, B], error)
}

// ParamOwner is the parameter-ownership contract an optimizer drives:
// access to the trainable parameters and a way to reset their gradient
// accumulators. It is independent of the Function contract; Linear
// implements both.
type ParamOwner[B tensor.Backend] interface {
	Parameters() []*Parameter[B]
	ZeroGrad()
}
