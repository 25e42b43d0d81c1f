package ops

import "github.com/born-ml/vae/internal/tensor"

// AddScalarOp represents output = x + s. The gradient passes through unchanged.
type AddScalarOp struct {
	record
}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(input, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{newRecord(output, input)}
}

// Backward returns the output gradient.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}

// MulScalarOp represents output = x * s.
//
// Backward pass:
//   - grad_input = grad_output * s
type MulScalarOp struct {
	record
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(input, output *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{record: newRecord(output, input), scalar: scalar}
}

// Backward scales the output gradient.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}
