package nn

import (
	"errors"

	"github.com/lumen-ml/lumen/internal/check"
	"github.com/lumen-ml/lumen/internal/tensor"
)

// ErrBackwardBeforeForward is returned when Backward is called on a
// LinearFunction that has not run Forward.
var ErrBackwardBeforeForward = errors.New("linear function: backward called before forward")

// LinearFunction is the nonparameterized affine operator: the weight and
// optional bias arrive as ordinary inputs instead of owned parameters, so
// the operator fits graphs where weights are themselves produced upstream.
//
// Forward accepts (x, w) or (x, w, b). Internally it builds a Linear that
// adopts w and b directly (same underlying buffers, no copy), runs it, and
// keeps it for the matching Backward call. A LinearFunction instance covers
// exactly one forward/backward pair; call Reset before reusing it.
type LinearFunction[B tensor.Backend] struct {
	backend B

	// State between one Forward call and its matching Backward call.
	inner *Linear[B]
	arity int
}

// NewLinearFunction creates a LinearFunction on the given backend.
func NewLinearFunction[B tensor.Backend](backend B) *LinearFunction[B] {
	return &LinearFunction[B]{backend: backend}
}

// checkInputs validates the (x, w[, b]) input contract.
func (f *LinearFunction[B]) checkInputs(inputs []*tensor.Tensor[float32, B]) error {
	c := check.New("linear function")
	c.Expect(len(inputs) == 2 || len(inputs) == 3, "takes 2 or 3 input tensors, got %d", len(inputs))
	if err := c.Err(); err != nil {
		return err
	}

	x, w := inputs[0], inputs[1]
	c.Expect(x.Raw().DType() == tensor.Float32, "input dtype must be float32, got %s", x.Raw().DType())
	c.Expect(w.Raw().DType() == tensor.Float32, "weight dtype must be float32, got %s", w.Raw().DType())
	c.Expect(len(x.Shape()) >= 2, "input must have at least 2 dimensions, got shape %v", x.Shape())
	c.Expect(len(w.Shape()) == 2, "weight must be 2-dimensional, got shape %v", w.Shape())
	if err := c.Err(); err != nil {
		return err
	}

	c.Expect(x.Shape().FlatDim() == w.Shape()[1],
		"product of input dimensions after batch is %d, want weight width %d",
		x.Shape().FlatDim(), w.Shape()[1])

	if len(inputs) == 3 {
		b := inputs[2]
		c.Expect(len(b.Shape()) == 1, "bias must be 1-dimensional, got shape %v", b.Shape())
		if err := c.Err(); err != nil {
			return err
		}
		c.Expect(b.Shape()[0] == w.Shape()[0],
			"bias length %d, want weight height %d", b.Shape()[0], w.Shape()[0])
	}
	return c.Err()
}

// Forward runs the affine transformation with w (and b) taken from the
// inputs. out_size and in_size are derived from w's shape. If any input
// resides on an accelerator device, the internal operator is migrated there
// before running.
func (f *LinearFunction[B]) Forward(inputs ...*tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if f.inner != nil {
		return nil, errors.New("linear function: instance already ran forward, call Reset before reusing")
	}
	if err := f.checkInputs(inputs); err != nil {
		return nil, err
	}

	x, w := inputs[0], inputs[1]
	outSize, inSize := w.Shape()[0], w.Shape()[1]

	cfg := LinearConfig{InitialWeight: w.Raw(), NoBias: true}
	if len(inputs) == 3 {
		cfg.InitialBias = inputs[2].Raw()
		cfg.NoBias = false
	}
	inner, err := NewLinear(inSize, outSize, cfg, f.backend)
	if err != nil {
		return nil, err
	}

	for _, in := range inputs {
		if in.Device().Accelerated() {
			inner.ToDevice(in.Device())
			break
		}
	}

	f.inner = inner
	f.arity = len(inputs)
	return inner.Forward(x)
}

// Backward returns the gradients with respect to Forward's inputs, in input
// order: (gx, gw) for the 2-input form, (gx, gw, gb) for the 3-input form.
//
// The internal operator's accumulators are zeroed first, so the returned
// weight and bias gradients reflect exactly this call rather than leftover
// state. Requires a prior Forward call on the same instance.
func (f *LinearFunction[B]) Backward(inputs []*tensor.Tensor[float32, B], outputGrad *tensor.Tensor[float32, B]) ([]*tensor.Tensor[float32, B], error) {
	if f.inner == nil {
		return nil, ErrBackwardBeforeForward
	}
	if err := f.checkInputs(inputs); err != nil {
		return nil, err
	}
	c := check.New("linear function backward")
	c.Expect(len(inputs) == f.arity, "got %d inputs, forward saw %d", len(inputs), f.arity)
	if err := c.Err(); err != nil {
		return nil, err
	}

	f.inner.ZeroGrad()
	gx, err := f.inner.Backward(inputs[0], outputGrad)
	if err != nil {
		return nil, err
	}

	grads := []*tensor.Tensor[float32, B]{gx, f.inner.Weight().Grad()}
	if f.arity == 3 {
		grads = append(grads, f.inner.Bias().Grad())
	}
	return grads, nil
}

// Reset clears the forward state so the instance can run another
// forward/backward pair.
func (f *LinearFunction[B]) Reset() {
	f.inner = nil
	f.arity = 0
}

// Affine is the one-shot functional form: it applies x @ w^T (+ b) through
// a fresh LinearFunction and returns the output. Pass a nil bias for the
// two-input form.
func Affine[B tensor.Backend](x, w, b *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	f := NewLinearFunction(x.Backend())
	if b == nil {
		return f.Forward(x, w)
	}
	return f.Forward(x, w, b)
}
