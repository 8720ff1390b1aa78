// Copyright 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/lumen-ml/lumen/internal/nn"
	"github.com/lumen-ml/lumen/internal/tensor"
)

// Function is the common interface for differentiable operations.
type Function[B tensor.Backend] = nn.Function[B]

// ParamOwner is implemented by operations that own trainable parameters.
type ParamOwner[B tensor.Backend] = nn.ParamOwner[B]

// Parameter represents a trainable parameter with an accumulating
// gradient buffer.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (affine) layer that owns its
// weight and optional bias parameters.
type Linear[B tensor.Backend] = nn.Linear[B]

// LinearConfig configures Linear construction. The zero value selects
// Gaussian weight initialization, a zero-initialized bias, and no
// explicit initial arrays.
type LinearConfig = nn.LinearConfig

// NewLinear creates a new linear layer.
//
// Example:
//
//	backend := cpu.New()
//	layer, err := nn.NewLinear(784, 128, nn.LinearConfig{}, backend)
func NewLinear[B tensor.Backend](inSize, outSize int, cfg LinearConfig, backend B) (*Linear[B], error) {
	return nn.NewLinear(inSize, outSize, cfg, backend)
}

// LinearFunction applies an affine transform whose weight and bias
// arrive as inputs rather than owned parameters.
type LinearFunction[B tensor.Backend] = nn.LinearFunction[B]

// NewLinearFunction creates a new nonparameterized linear function.
func NewLinearFunction[B tensor.Backend](backend B) *LinearFunction[B] {
	return nn.NewLinearFunction(backend)
}

// ErrBackwardBeforeForward is returned when Backward is called on a
// LinearFunction whose Forward has not run.
var ErrBackwardBeforeForward = nn.ErrBackwardBeforeForward

// Affine applies y = x @ w^T + b in one shot. Pass a nil bias for the
// bias-free form.
//
// Example:
//
//	backend := cpu.New()
//	y, err := nn.Affine(x, w, nil)
func Affine[B tensor.Backend](x, w, b *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return nn.Affine(x, w, b)
}

// Initializers

// Gaussian creates a tensor drawn from N(0, std^2).
func Gaussian[B tensor.Backend](shape tensor.Shape, std float64, backend B) *tensor.Tensor[float32, B] {
	return nn.Gaussian(shape, std, backend)
}

// Zeros creates a zero-filled float32 tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Zeros(shape, backend)
}

// Full creates a float32 tensor filled with a constant.
func Full[B tensor.Backend](shape tensor.Shape, value float32, backend B) *tensor.Tensor[float32, B] {
	return nn.Full(shape, value, backend)
}
