package ops

import "github.com/born-ml/vae/internal/tensor"

// ReshapeOp represents a reshape: output has the input's data with a new shape.
// The gradient is reshaped back to the input shape.
type ReshapeOp struct {
	record
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{newRecord(output, input)}
}

// Backward reshapes the output gradient to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.inputs[0].Shape())}
}

// TransposeOp represents a 2-D transpose. The gradient is transposed back.
type TransposeOp struct {
	record
}

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(input, output *tensor.RawTensor) *TransposeOp {
	return &TransposeOp{newRecord(output, input)}
}

// Backward transposes the output gradient.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Transpose(outputGrad)}
}

// BroadcastToOp represents an explicit broadcast. The gradient is summed
// over the broadcast dimensions.
type BroadcastToOp struct {
	record
}

// NewBroadcastToOp creates a new BroadcastToOp.
func NewBroadcastToOp(input, output *tensor.RawTensor) *BroadcastToOp {
	return &BroadcastToOp{newRecord(output, input)}
}

// Backward reduces the output gradient to the input shape.
func (op *BroadcastToOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{reduceBroadcast(outputGrad, op.inputs[0].Shape(), backend)}
}
