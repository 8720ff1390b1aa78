package nn

import (
	"fmt"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// Parameter represents a trainable parameter owned by a layer.
//
// Each parameter carries a gradient accumulator of the same shape,
// allocated zero-filled at construction. Backward passes add into the
// accumulator; it is never overwritten. Callers (typically the optimizer)
// are responsible for calling ZeroGrad at the appropriate cadence, e.g.
// once per optimization step.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter creates a new trainable parameter wrapping an initialized
// tensor. The gradient accumulator is allocated with the tensor's shape
// and initialized to zero.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
		grad:   tensor.Zeros[float32](t.Shape(), t.Backend()),
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient accumulator.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// AddGrad adds a gradient contribution into the accumulator in place.
// The contribution must match the parameter's shape.
func (p *Parameter[B]) AddGrad(delta *tensor.RawTensor) {
	if !delta.Shape().Equal(p.tensor.Shape()) {
		panic(fmt.Sprintf("parameter %q: gradient shape %v does not match parameter shape %v",
			p.name, delta.Shape(), p.tensor.Shape()))
	}

	acc := p.grad.Raw().AsFloat32()
	src := delta.AsFloat32()
	for i, v := range src {
		acc[i] += v
	}
}

// ZeroGrad resets the gradient accumulator to zero in place.
func (p *Parameter[B]) ZeroGrad() {
	data := p.grad.Raw().AsFloat32()
	for i := range data {
		data[i] = 0
	}
}

// toDevice retags the parameter's tensor and accumulator with the given
// device. The buffers are shared, not copied: both backends stage host
// memory per operation.
func (p *Parameter[B]) toDevice(device tensor.Device) {
	p.tensor = tensor.New[float32, B](p.tensor.Raw().WithDevice(device), p.tensor.Backend())
	p.grad = tensor.New[float32, B](p.grad.Raw().WithDevice(device), p.grad.Backend())
}
