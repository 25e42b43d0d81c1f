package ops

import (
	"fmt"

	"github.com/born-ml/vae/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad
	}

	if len(targetShape) == 0 {
		return backend.Sum(grad)
	}

	// Sum away leading dimensions the target doesn't have.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Sum along dimensions where the target is 1.
	for i, dim := range targetShape {
		if dim == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// unsqueezeDim re-inserts a reduced dimension of size 1 at dim.
func unsqueezeDim(grad *tensor.RawTensor, dim int, inputShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	shape := inputShape.Clone()
	shape[dim] = 1
	return backend.Reshape(grad, shape)
}

func normalizeDim(dim int, shape tensor.Shape) int {
	d, err := shape.NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("ops: %v", err))
	}
	return d
}
