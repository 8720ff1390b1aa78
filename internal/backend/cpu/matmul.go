package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// MatMul performs 2D matrix multiplication C = op(A) @ op(B) using gonum's
// BLAS Gemm, where op(X) is X or X^T depending on the transpose flags.
// The flags avoid materializing transposed operands.
func (cpu *Backend) MatMul(a, b *tensor.RawTensor, transA, transB bool) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	// Dimensions of op(A) and op(B).
	m, k := aShape[0], aShape[1]
	if transA {
		m, k = k, m
	}
	kAlt, n := bShape[0], bShape[1]
	if transB {
		kAlt, n = n, kAlt
	}
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch op%v @ op%v (inner %d vs %d)", aShape, bShape, k, kAlt))
	}

	result, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: failed to create result tensor: %v", err))
	}

	tA, tB := blas.NoTrans, blas.NoTrans
	if transA {
		tA = blas.Trans
	}
	if transB {
		tB = blas.Trans
	}

	switch a.DType() {
	case tensor.Float32:
		blas32.Gemm(tA, tB, 1,
			blas32.General{Rows: aShape[0], Cols: aShape[1], Stride: aShape[1], Data: a.AsFloat32()},
			blas32.General{Rows: bShape[0], Cols: bShape[1], Stride: bShape[1], Data: b.AsFloat32()},
			0,
			blas32.General{Rows: m, Cols: n, Stride: n, Data: result.AsFloat32()},
		)
	case tensor.Float64:
		blas64.Gemm(tA, tB, 1,
			blas64.General{Rows: aShape[0], Cols: aShape[1], Stride: aShape[1], Data: a.AsFloat64()},
			blas64.General{Rows: bShape[0], Cols: bShape[1], Stride: bShape[1], Data: b.AsFloat64()},
			0,
			blas64.General{Rows: m, Cols: n, Stride: n, Data: result.AsFloat64()},
		)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}
