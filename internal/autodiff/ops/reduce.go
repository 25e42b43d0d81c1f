package ops

import "github.com/born-ml/vae/internal/tensor"

// SumDimOp represents a sum along one dimension: output = sum(x, dim).
//
// Backward:
//
//	grad_x = broadcast(grad_y, x.shape)
//
// If keepDim=false, grad_y is unsqueezed at dim before broadcasting.
type SumDimOp struct {
	record
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{record: newRecord(output, x), dim: normalizeDim(dim, x.Shape()), keepDim: keepDim}
}

// Backward broadcasts the output gradient over the reduced dimension.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	grad := outputGrad
	if !op.keepDim {
		grad = unsqueezeDim(grad, op.dim, x.Shape(), backend)
	}
	return []*tensor.RawTensor{backend.BroadcastTo(grad, x.Shape())}
}

// MeanDimOp represents a mean along one dimension: output = mean(x, dim).
//
// Backward:
//
//	grad_x = broadcast(grad_y, x.shape) / size[dim]
type MeanDimOp struct {
	record
	dim     int
	keepDim bool
}

// NewMeanDimOp creates a new MeanDimOp.
func NewMeanDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *MeanDimOp {
	return &MeanDimOp{record: newRecord(output, x), dim: normalizeDim(dim, x.Shape()), keepDim: keepDim}
}

// Backward broadcasts and scales the output gradient.
func (op *MeanDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	grad := outputGrad
	if !op.keepDim {
		grad = unsqueezeDim(grad, op.dim, x.Shape(), backend)
	}
	gradX := backend.BroadcastTo(grad, x.Shape())
	return []*tensor.RawTensor{backend.MulScalar(gradX, 1/float64(x.Shape()[op.dim]))}
}

// SumOp represents a full reduction: output = sum(x).
type SumOp struct {
	record
}

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{newRecord(output, x)}
}

// Backward broadcasts the scalar gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.BroadcastTo(outputGrad, op.inputs[0].Shape())}
}

// MeanOp represents a full mean: output = mean(x).
type MeanOp struct {
	record
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(x, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{newRecord(output, x)}
}

// Backward broadcasts the scalar gradient and divides by the element count.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	gradX := backend.BroadcastTo(outputGrad, x.Shape())
	return []*tensor.RawTensor{backend.MulScalar(gradX, 1/float64(x.NumElements()))}
}
