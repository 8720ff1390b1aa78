package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - CPU: gonum BLAS kernels
//   - WebGPU: WGSL compute shaders via go-webgpu
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MatMul performs 2D matrix multiplication with optional operand
	// transposition: C = op(A) @ op(B) where op(X) is X or X^T.
	// The transpose flags let callers avoid materializing transposed
	// operands (the affine backward pass needs gy^T @ x and gy @ W).
	MatMul(a, b *RawTensor, transA, transB bool) *RawTensor

	// MulScalar multiplies every element by a scalar.
	MulScalar(x *RawTensor, scalar float32) *RawTensor

	// SumDim sums along a dimension, optionally keeping it with size 1.
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor) *RawTensor // 2D transpose

	// Metadata.
	Name() string
	Device() Device
}
