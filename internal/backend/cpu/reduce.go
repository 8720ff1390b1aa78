package cpu

import (
	"fmt"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// SumDim sums along a dimension.
// With keepDim the reduced dimension stays with size 1, otherwise it is
// removed from the result shape.
func (cpu *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sumdim: dimension %d out of range for shape %v", dim, shape))
	}

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			outShape = append(outShape, d)
		case keepDim:
			outShape = append(outShape, 1)
		}
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sumdim: failed to create result tensor: %v", err))
	}

	outer := 1
	for _, d := range shape[:dim] {
		outer *= d
	}
	dimSize := shape[dim]
	inner := 1
	for _, d := range shape[dim+1:] {
		inner *= d
	}

	switch x.DType() {
	case tensor.Float32:
		sumDimFloat32(x.AsFloat32(), result.AsFloat32(), outer, dimSize, inner)
	case tensor.Float64:
		sumDimFloat64(x.AsFloat64(), result.AsFloat64(), outer, dimSize, inner)
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s", x.DType()))
	}

	return result
}

func sumDimFloat32(data, result []float32, outer, dimSize, inner int) {
	for o := 0; o < outer; o++ {
		for j := 0; j < dimSize; j++ {
			base := (o*dimSize + j) * inner
			out := o * inner
			for i := 0; i < inner; i++ {
				result[out+i] += data[base+i]
			}
		}
	}
}

func sumDimFloat64(data, result []float64, outer, dimSize, inner int) {
	for o := 0; o < outer; o++ {
		for j := 0; j < dimSize; j++ {
			base := (o*dimSize + j) * inner
			out := o * inner
			for i := 0; i < inner; i++ {
				result[out+i] += data[base+i]
			}
		}
	}
}
