// Copyright 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU backend for tensor operations.
package cpu

import (
	internalcpu "github.com/lumen-ml/lumen/internal/backend/cpu"
	"github.com/lumen-ml/lumen/tensor"
)

// Backend represents the CPU backend implementation.
//
// The CPU backend runs matrix kernels through gonum's BLAS
// implementation and element-wise kernels in pure Go.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/lumen-ml/lumen/backend/cpu"
//	    "github.com/lumen-ml/lumen/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}
