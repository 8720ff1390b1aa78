package tensor

import (
	"math/rand/v2"
	"time"
	"unsafe"

	"gonum.org/v1/gonum/stat/distuv"
)

// randSource seeds the normal sampler once per process. Weight initialization
// is not security-critical.
var randSource = rand.NewPCG(uint64(time.Now().UnixNano()), 0)

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var zero T
	raw, err := NewRaw(shape, inferDataType(zero), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, T(1), b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor filled with random values from the standard normal
// distribution N(0, 1).
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	normal := distuv.Normal{
		Mu:    0,
		Sigma: 1,
		Src:   randSource,
	}

	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(normal.Rand())
	}
	return t
}

// bytesOf reinterprets a typed slice as its backing bytes.
func bytesOf[T DType](data []T) []byte {
	var zero T
	size := inferDataType(zero).Size()
	//nolint:gosec // unsafe.Slice for zero-copy conversion, length derived from the slice itself
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*size)
}
