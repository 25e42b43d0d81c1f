package nn

import (
	"fmt"

	"github.com/born-ml/vae/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = activation(x @ W + b)
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Parameters are named "<name>.weight" and "<name>.bias".
//
// Example:
//
//	initializer := nn.NewVarianceScaling(rng)
//	layer := nn.NewLinear("encoder_h1", 784, 500, nn.NewSoftplus[B](), initializer, backend)
//	output := layer.Forward(input) // shape: [batch, 500]
type Linear[B tensor.Backend] struct {
	name        string
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [in_features, out_features]
	bias        *Parameter[B] // [out_features]
	activation  Module[B]     // nil means identity
}

// NewLinear creates a new Linear layer.
//
// The weight is filled by initializer; the bias starts at zero.
func NewLinear[B tensor.Backend](name string, inFeatures, outFeatures int, activation Module[B], initializer Initializer, backend B) *Linear[B] {
	weightTensor := tensor.Zeros(tensor.Shape{inFeatures, outFeatures}, backend)
	initializer.Fill(weightTensor.Data(), inFeatures, outFeatures)

	return &Linear[B]{
		name:        name,
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter(name+".weight", weightTensor),
		bias:        NewParameter(name+".bias", tensor.Zeros(tensor.Shape{outFeatures}, backend)),
		activation:  activation,
	}
}

// Forward computes the output of the linear layer.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("Linear.Forward(%s): expected 2D input [batch, features], got shape %v", l.name, inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward(%s): expected input with %d features, got %d", l.name, l.inFeatures, inputShape[1]))
	}

	// [batch, in] @ [in, out] + [out] (broadcast over batch)
	output := input.MatMul(l.weight.Tensor()).Add(l.bias.Tensor())

	if l.activation != nil {
		output = l.activation.Forward(output)
	}
	return output
}

// Parameters returns [weight, bias].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Name returns the layer name.
func (l *Linear[B]) Name() string {
	return l.name
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}
