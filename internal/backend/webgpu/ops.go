package webgpu

import (
	"fmt"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.binaryOp(a, other, "add", addShader)
	if err != nil {
		panic("webgpu: Add: " + err.Error())
	}
	return result
}

// Sub performs element-wise subtraction with broadcasting.
func (b *Backend) Sub(a, other *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.binaryOp(a, other, "sub", subShader)
	if err != nil {
		panic("webgpu: Sub: " + err.Error())
	}
	return result
}

// Mul performs element-wise multiplication with broadcasting.
func (b *Backend) Mul(a, other *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.binaryOp(a, other, "mul", mulShader)
	if err != nil {
		panic("webgpu: Mul: " + err.Error())
	}
	return result
}

// MulScalar multiplies every element by a scalar.
func (b *Backend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	result, err := b.runScalarMul(x, scalar)
	if err != nil {
		panic("webgpu: MulScalar: " + err.Error())
	}
	return result
}

// MatMul performs matrix multiplication of 2D tensors. The transA and
// transB flags transpose the corresponding operand before multiplying.
func (b *Backend) MatMul(a, other *tensor.RawTensor, transA, transB bool) *tensor.RawTensor {
	var err error
	if transA {
		a, err = b.runTranspose(a)
		if err != nil {
			panic("webgpu: MatMul: " + err.Error())
		}
	}
	if transB {
		other, err = b.runTranspose(other)
		if err != nil {
			panic("webgpu: MatMul: " + err.Error())
		}
	}

	result, err := b.runMatMul(a, other)
	if err != nil {
		panic("webgpu: MatMul: " + err.Error())
	}
	return result
}

// SumDim sums along a dimension.
func (b *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("webgpu: SumDim: dimension %d out of range for shape %v", dim, shape))
	}

	outShape := make(tensor.Shape, 0, len(shape))
	for d, size := range shape {
		if d == dim {
			if keepDim {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, size)
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}

	outer := 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	inner := 1
	for d := dim + 1; d < len(shape); d++ {
		inner *= shape[d]
	}

	result, err := b.runSumDim(x, outShape, outer, shape[dim], inner)
	if err != nil {
		panic("webgpu: SumDim: " + err.Error())
	}
	return result
}

// Reshape returns a tensor with a new shape over the same data.
func (b *Backend) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if newShape.NumElements() != x.NumElements() {
		panic(fmt.Sprintf("webgpu: Reshape: cannot reshape %v into %v", x.Shape(), newShape))
	}
	return x.View(newShape)
}

// Transpose transposes a 2D tensor.
func (b *Backend) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runTranspose(x)
	if err != nil {
		panic("webgpu: Transpose: " + err.Error())
	}
	return result
}

// binaryOp dispatches an element-wise binary shader, expanding broadcast
// operands on the host first since the shaders assume same-shape inputs.
func (b *Backend) binaryOp(a, other *tensor.RawTensor, name, shaderCode string) (*tensor.RawTensor, error) {
	if a.DType() != other.DType() {
		return nil, fmt.Errorf("dtype mismatch %s vs %s", a.DType(), other.DType())
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), other.Shape())
	if err != nil {
		return nil, err
	}

	if needsBroadcast {
		a, err = expandTo(a, outShape)
		if err != nil {
			return nil, err
		}
		other, err = expandTo(other, outShape)
		if err != nil {
			return nil, err
		}
	}

	return b.runBinaryOp(a, other, name, shaderCode)
}

// expandTo materializes a tensor broadcast to the given shape.
func expandTo(x *tensor.RawTensor, outShape tensor.Shape) (*tensor.RawTensor, error) {
	if x.Shape().Equal(outShape) {
		return x, nil
	}
	if x.DType() != tensor.Float32 {
		return nil, fmt.Errorf("only float32 is supported, got %s", x.DType())
	}

	result, err := tensor.NewRaw(outShape, x.DType(), x.Device())
	if err != nil {
		return nil, err
	}

	src := x.AsFloat32()
	dst := result.AsFloat32()
	srcIdx := broadcastStrides(x.Shape(), outShape)
	outStrides := outShape.ComputeStrides()
	for i := range dst {
		si := 0
		rem := i
		for d, stride := range outStrides {
			coord := rem / stride
			rem %= stride
			si += coord * srcIdx[d]
		}
		dst[i] = src[si]
	}

	return result, nil
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
