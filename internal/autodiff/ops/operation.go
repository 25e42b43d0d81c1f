// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - AddOp, SubOp: element-wise addition/subtraction with broadcasting
//   - MulOp, DivOp: element-wise multiplication/division with broadcasting
//   - MatMulOp: matrix multiplication (d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad)
//   - ReshapeOp, TransposeOp, BroadcastToOp: shape manipulation
//   - AddScalarOp, MulScalarOp: scalar arithmetic
//   - ExpOp, LogOp, SoftplusOp, SigmoidOp: element-wise functions
//   - SumDimOp, MeanDimOp, SumOp, MeanOp: reductions
package ops

import "github.com/born-ml/vae/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (reduced to each input's shape)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// record holds the inputs and output shared by every operation.
type record struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensors.
func (r record) Inputs() []*tensor.RawTensor {
	return r.inputs
}

// Output returns the output tensor.
func (r record) Output() *tensor.RawTensor {
	return r.output
}

func newRecord(output *tensor.RawTensor, inputs ...*tensor.RawTensor) record {
	return record{inputs: inputs, output: output}
}
