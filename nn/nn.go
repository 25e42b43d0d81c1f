// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layer builder and the density library of the VAE.
//
// # Layers
//
//	initializer := nn.NewVarianceScaling(rng)
//	h1 := nn.NewLinear[B]("encoder_h1", 784, 500, nn.NewSoftplus[B](), initializer, backend)
//
// # Densities
//
// LogNormalDensity, BernoulliLogitDensity and KLDivergence reduce over the
// last dimension, returning one value per row.
package nn

import (
	"math/rand/v2"

	"github.com/born-ml/vae/internal/nn"
	"github.com/born-ml/vae/internal/tensor"
)

// Module is the interface implemented by layers and activations.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named trainable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// Linear is a fully connected layer y = activation(x·W + b).
type Linear[B tensor.Backend] = nn.Linear[B]

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// Initializer fills weight matrices.
type Initializer = nn.Initializer

// VarianceScaling is the truncated-normal variance-scaling initializer.
type VarianceScaling = nn.VarianceScaling

// NewLinear creates a Linear layer whose parameters are named
// "<name>.weight" and "<name>.bias".
func NewLinear[B tensor.Backend](name string, in, out int, activation Module[B], initializer Initializer, backend B) *Linear[B] {
	return nn.NewLinear(name, in, out, activation, initializer, backend)
}

// NewSequential creates a Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// NewSoftplus returns the softplus activation.
func NewSoftplus[B tensor.Backend]() Module[B] {
	return nn.NewSoftplus[B]()
}

// NewSigmoid returns the logistic activation.
func NewSigmoid[B tensor.Backend]() Module[B] {
	return nn.NewSigmoid[B]()
}

// NewVarianceScaling returns the default initializer: factor 2, fan-in.
func NewVarianceScaling(rng *rand.Rand) *VarianceScaling {
	return nn.NewVarianceScaling(rng)
}

// LogNormalDensity is the diagonal Gaussian log-density of x, per row.
func LogNormalDensity[B tensor.Backend](x, mean, std *tensor.Tensor[B]) *tensor.Tensor[B] {
	return nn.LogNormalDensity(x, mean, std)
}

// LogNormalDensityLogVar is LogNormalDensity with the scale given as a
// log-variance.
func LogNormalDensityLogVar[B tensor.Backend](x, mean, logVar *tensor.Tensor[B]) *tensor.Tensor[B] {
	return nn.LogNormalDensityLogVar(x, mean, logVar)
}

// BernoulliLogitDensity is the Bernoulli log-likelihood of binary x under
// logits, per row.
func BernoulliLogitDensity[B tensor.Backend](x, logits *tensor.Tensor[B]) *tensor.Tensor[B] {
	return nn.BernoulliLogitDensity(x, logits)
}

// KLDivergence is KL(N(mean, std²) ‖ N(0, I)), per row.
func KLDivergence[B tensor.Backend](mean, std *tensor.Tensor[B]) *tensor.Tensor[B] {
	return nn.KLDivergence(mean, std)
}

// KLDivergenceLogVar is KL(N(mean, exp(logVar)) ‖ N(0, I)), per row.
func KLDivergenceLogVar[B tensor.Backend](mean, logVar *tensor.Tensor[B]) *tensor.Tensor[B] {
	return nn.KLDivergenceLogVar(mean, logVar)
}
