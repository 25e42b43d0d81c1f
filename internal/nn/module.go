// Package nn implements the neural network building blocks of the VAE:
// trainable parameters, affine layers, activations, weight initializers,
// the log-density and KL-divergence library, and parameter checkpoints.
package nn

import (
	"github.com/born-ml/vae/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build larger networks:
//
//	trunk := nn.NewSequential[B](
//	    nn.NewLinear("encoder_h1", 784, 500, nn.NewSoftplus[B](), initializer, backend),
//	    nn.NewLinear("encoder_h2", 500, 500, nn.NewSoftplus[B](), initializer, backend),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[B]) *tensor.Tensor[B]

	// Parameters returns all trainable parameters of this module, in a
	// stable order. Activations return an empty slice.
	Parameters() []*Parameter[B]
}

// StateDict maps every parameter name to its raw tensor.
func StateDict[B tensor.Backend](params []*Parameter[B]) map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor, len(params))
	for _, p := range params {
		state[p.Name()] = p.Raw()
	}
	return state
}
