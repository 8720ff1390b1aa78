// Copyright 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ml/lumen/backend/cpu"
	"github.com/lumen-ml/lumen/nn"
	"github.com/lumen-ml/lumen/optim"
	"github.com/lumen-ml/lumen/tensor"
)

// TestTrainingLoop runs a small end-to-end cycle through the public API:
// forward, backward, optimizer step, gradient reset.
func TestTrainingLoop(t *testing.T) {
	backend := cpu.New()

	layer, err := nn.NewLinear(3, 2, nn.LinearConfig{}, backend)
	require.NoError(t, err)

	sgd := optim.NewSGD(layer.Parameters(), optim.SGDConfig{LR: 0.01})

	x := tensor.Ones[float32](tensor.Shape{4, 3}, backend)

	for range 3 {
		y, err := layer.Forward(x)
		require.NoError(t, err)
		require.True(t, y.Shape().Equal(tensor.Shape{4, 2}))

		gy := tensor.Ones[float32](tensor.Shape{4, 2}, backend)
		_, err = layer.Backward(x, gy)
		require.NoError(t, err)

		sgd.Step()
		sgd.ZeroGrad()
	}

	for _, v := range layer.Weight().Grad().Data() {
		assert.Zero(t, v)
	}
}

// TestAffineFacade checks the one-shot functional form.
func TestAffineFacade(t *testing.T) {
	backend := cpu.New()

	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
	wRaw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(wRaw.AsFloat32(), []float32{1, 1, 1, 2, 2, 2})
	w := tensor.New[float32](wRaw, backend)

	y, err := nn.Affine(x, w, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 6, 3, 6}, y.Data())
}
