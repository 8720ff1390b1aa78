// Package cpu implements the CPU backend on top of gonum BLAS kernels.
package cpu

import (
	"fmt"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// Backend implements tensor operations on the CPU.
type Backend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (cpu *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *Backend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y },
	)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y },
	)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y },
	)
}

// MulScalar multiplies every element by a scalar.
func (cpu *Backend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("mulscalar: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = v * scalar
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		s := float64(scalar)
		for i, v := range src {
			dst[i] = v * s
		}
	default:
		panic(fmt.Sprintf("mulscalar: unsupported dtype %s", x.DType()))
	}

	return result
}

// binaryOp applies an element-wise operation with broadcasting.
func (cpu *Backend) binaryOp(name string, a, b *tensor.RawTensor,
	f32 func(x, y float32) float32, f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		if !needsBroadcast {
			x, y, dst := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
			for i := range dst {
				dst[i] = f32(x[i], y[i])
			}
			return result
		}
		x, y, dst := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		aIdx := broadcastStrides(a.Shape(), outShape)
		bIdx := broadcastStrides(b.Shape(), outShape)
		outStrides := outShape.ComputeStrides()
		for i := range dst {
			ai, bi := 0, 0
			rem := i
			for d, stride := range outStrides {
				coord := rem / stride
				rem %= stride
				ai += coord * aIdx[d]
				bi += coord * bIdx[d]
			}
			dst[i] = f32(x[ai], y[bi])
		}
	case tensor.Float64:
		if !needsBroadcast {
			x, y, dst := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
			for i := range dst {
				dst[i] = f64(x[i], y[i])
			}
			return result
		}
		x, y, dst := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
		aIdx := broadcastStrides(a.Shape(), outShape)
		bIdx := broadcastStrides(b.Shape(), outShape)
		outStrides := outShape.ComputeStrides()
		for i := range dst {
			ai, bi := 0, 0
			rem := i
			for d, stride := range outStrides {
				coord := rem / stride
				rem %= stride
				ai += coord * aIdx[d]
				bi += coord * bIdx[d]
			}
			dst[i] = f64(x[ai], y[bi])
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}

	return result
}

// broadcastStrides computes per-output-dimension element strides into a
// tensor of shape `in` broadcast to shape `out`. Broadcast dimensions
// (size 1 or missing) get stride 0 so the same element is reused.
func broadcastStrides(in, out tensor.Shape) []int {
	inStrides := in.ComputeStrides()
	result := make([]int, len(out))
	offset := len(out) - len(in)
	for d := range out {
		inDim := d - offset
		if inDim < 0 || in[inDim] == 1 {
			result[d] = 0
		} else {
			result[d] = inStrides[inDim]
		}
	}
	return result
}
