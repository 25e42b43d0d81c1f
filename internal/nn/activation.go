package nn

import (
	"github.com/born-ml/vae/internal/tensor"
)

// Softplus applies log(1 + exp(x)) element-wise.
//
// Softplus has no parameters.
type Softplus[B tensor.Backend] struct{}

// NewSoftplus creates a new Softplus activation module.
func NewSoftplus[B tensor.Backend]() *Softplus[B] {
	return &Softplus[B]{}
}

// Forward applies softplus.
func (s *Softplus[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return input.Softplus()
}

// Parameters returns an empty slice.
func (s *Softplus[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{}
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
//
// Sigmoid has no parameters.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies the logistic function.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return input.Sigmoid()
}

// Parameters returns an empty slice.
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{}
}
