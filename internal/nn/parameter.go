package nn

import (
	"github.com/born-ml/vae/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// The name is the parameter's key in checkpoints (e.g. "encoder_h1.weight").
// Optimizers update the tensor's storage in place, so the raw tensor
// pointer is stable for the lifetime of the parameter and can key gradient
// maps.
//
// Example:
//
//	weight := nn.NewParameter("encoder_h1.weight", weightTensor)
//	grad := grads[weight.Raw()]
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[B]
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[B] {
	return p.tensor
}

// Raw returns the parameter's raw tensor.
func (p *Parameter[B]) Raw() *tensor.RawTensor {
	return p.tensor.Raw()
}

// Shape returns the parameter shape.
func (p *Parameter[B]) Shape() tensor.Shape {
	return p.tensor.Shape()
}

// NumElements returns the number of scalar entries.
func (p *Parameter[B]) NumElements() int {
	return p.tensor.NumElements()
}

// CountElements returns the total number of scalar entries in params.
func CountElements[B tensor.Backend](params []*Parameter[B]) int {
	n := 0
	for _, p := range params {
		n += p.NumElements()
	}
	return n
}
