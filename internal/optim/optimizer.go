// Package optim implements optimization algorithms for training the VAE.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// An optimizer is scoped to the parameters it was created with: Step only
// ever writes those parameters, whatever else the gradient map holds. Two
// optimizers over disjoint parameter sets can therefore share one gradient
// map without interfering.
//
// Example usage:
//
//	optimizer := optim.NewAdam(encoderParams, optim.AdamConfig{LR: 0.001})
//
//	backend.Tape().Clear()
//	loss := encoderCost(batch)
//	grads := autodiff.Backward(loss, backend)
//	optimizer.Step(grads)
package optim

import (
	"github.com/born-ml/vae/internal/nn"
	"github.com/born-ml/vae/internal/tensor"
	"gonum.org/v1/gonum/floats"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to the optimizer's parameters.
	//
	// grads maps each parameter's raw tensor to dLoss/dParam. Parameters
	// without an entry are left unchanged.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// GetLR returns the current learning rate.
	GetLR() float64

	// Name returns the optimizer name, e.g. "Adam".
	Name() string
}

// getGradient safely retrieves gradient for a parameter.
//
// Returns nil if no gradient is found (parameter wasn't part of computation graph).
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Raw()]
}

// Flatten concatenates the gradients of params, in parameter order, into one
// vector. Parameters without a gradient contribute zeros.
func Flatten[B tensor.Backend](params []*nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) []float64 {
	out := make([]float64, 0, nn.CountElements(params))
	for _, p := range params {
		if g := getGradient(p, grads); g != nil {
			out = append(out, g.Data()...)
			continue
		}
		out = append(out, make([]float64, p.NumElements())...)
	}
	return out
}

// GradientNorm returns the L2 norm of the flattened gradients of params.
func GradientNorm[B tensor.Backend](params []*nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) float64 {
	return floats.Norm(Flatten(params, grads), 2)
}
