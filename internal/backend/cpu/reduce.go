package cpu

import (
	"fmt"

	"github.com/born-ml/vae/internal/tensor"
)

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x := tensor.Randn(tensor.Shape{2, 3, 4}, rng, backend)
//	y := backend.SumDim(x.Raw(), -1, true)  // shape: [2, 3, 1]
//	z := backend.SumDim(x.Raw(), -1, false) // shape: [2, 3]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("sumdim", x, dim, keepDim, 1)
}

// MeanDim averages tensor elements along the specified dimension.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	d, err := shape.NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("meandim: %v", err))
	}
	return cpu.reduceDim("meandim", x, d, keepDim, 1/float64(shape[d]))
}

// Sum reduces all elements into a scalar tensor.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	var total float64
	for _, v := range x.Data() {
		total += v
	}
	return scalar(total, cpu.device)
}

// Mean averages all elements into a scalar tensor.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	var total float64
	for _, v := range x.Data() {
		total += v
	}
	return scalar(total/float64(x.NumElements()), cpu.device)
}

// reduceDim sums along dim and multiplies the result by scale.
func (cpu *CPUBackend) reduceDim(name string, x *tensor.RawTensor, dim int, keepDim bool, scale float64) *tensor.RawTensor {
	shape := x.Shape()
	dim, err := shape.NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, len(shape)-1)
		for i, s := range shape {
			if i != dim {
				outShape = append(outShape, s)
			}
		}
	}

	result, err := tensor.NewRaw(outShape, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	// View the input as [outer, dimSize, inner].
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	dimSize := shape[dim]

	src, dst := x.Data(), result.Data()
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			var sum float64
			base := o*dimSize*inner + in
			for d := 0; d < dimSize; d++ {
				sum += src[base+d*inner]
			}
			dst[o*inner+in] = sum * scale
		}
	}

	return result
}

func scalar(v float64, device tensor.Device) *tensor.RawTensor {
	r := tensor.MustNewRaw(tensor.Shape{}, device)
	r.Data()[0] = v
	return r
}
