package cpu

import (
	"fmt"

	"github.com/born-ml/vae/internal/tensor"
)

// Reshape returns a copy of t with a new shape holding the same number of elements.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) into %v", t.Shape(), t.NumElements(), newShape))
	}
	result, err := tensor.FromData(t.Data(), newShape, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose swaps the two axes of a 2-D tensor.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: expected 2D tensor, got %v", shape))
	}
	rows, cols := shape[0], shape[1]

	result, err := tensor.NewRaw(tensor.Shape{cols, rows}, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	src, dst := t.Data(), result.Data()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[j*rows+i] = src[i*cols+j]
		}
	}
	return result
}

// BroadcastTo expands t to shape following the broadcasting rules.
func (cpu *CPUBackend) BroadcastTo(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out, _, err := tensor.BroadcastShapes(t.Shape(), shape)
	if err != nil || !out.Equal(shape) {
		panic(fmt.Sprintf("broadcast_to: cannot broadcast %v to %v", t.Shape(), shape))
	}

	result, err := tensor.NewRaw(shape, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("broadcast_to: %v", err))
	}

	outStrides := shape.ComputeStrides()
	inStrides := computeBroadcastStridesForShape(t.Shape(), shape)
	src, dst := t.Data(), result.Data()
	for i := range dst {
		dst[i] = src[computeFlatIndex(i, outStrides, inStrides)]
	}
	return result
}
