package ops

import "github.com/born-ml/vae/internal/tensor"

// SoftplusOp represents y = log(1 + exp(x)).
//
// Backward pass:
//   - d(softplus(x))/dx = sigmoid(x)
type SoftplusOp struct {
	record
}

// NewSoftplusOp creates a new SoftplusOp.
func NewSoftplusOp(input, output *tensor.RawTensor) *SoftplusOp {
	return &SoftplusOp{newRecord(output, input)}
}

// Backward computes input gradient for softplus.
func (op *SoftplusOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Sigmoid(op.inputs[0]))}
}

// SigmoidOp represents y = 1 / (1 + exp(-x)).
//
// Backward pass:
//   - d(sigmoid(x))/dx = y * (1 - y)
type SigmoidOp struct {
	record
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{newRecord(output, input)}
}

// Backward computes input gradient for sigmoid.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	oneMinusY := backend.AddScalar(backend.MulScalar(y, -1), 1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Mul(y, oneMinusY))}
}
