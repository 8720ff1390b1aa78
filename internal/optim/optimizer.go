// Package optim implements optimization algorithms over layer parameters.
//
// Optimizers consume the gradient accumulators that layers fill during
// Backward. Because gradients accumulate additively, the expected cadence is
//
//	out, _ := layer.Forward(x)
//	layer.Backward(x, gy)
//	optimizer.Step()
//	optimizer.ZeroGrad()
//
// with ZeroGrad called once per step unless accumulation across several
// batches is intended.
package optim

import (
	"github.com/lumen-ml/lumen/internal/nn"
	"github.com/lumen-ml/lumen/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to all parameters using their accumulated
	// gradients.
	Step()

	// ZeroGrad resets all parameter gradient accumulators.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32
}

// zeroGrads resets the accumulators of every parameter in the list.
func zeroGrads[B tensor.Backend](params []*nn.Parameter[B]) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
