// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package vae provides variational autoencoders trained with a choice of
// encoder gradient estimators.
//
// # Overview
//
// Three estimators are available:
//   - Reparameterized: differentiates through z = mean + std·ε
//   - ScoreFunction: log-derivative estimator with the latent held constant
//   - ScoreFunctionWithBaseline: score function with a Monte Carlo baseline
//
// Every training step updates the decoder on mean(KL − log p(x|z)) and then
// the encoder on the estimator's cost, each with its own optimizer. Loss
// always reports the negative ELBO, whatever the estimator.
//
// # Basic Usage
//
//	cfg := vae.DefaultConfig()
//	cfg.Estimator = vae.ScoreFunctionWithBaseline{Samples: 10}
//
//	model, err := vae.New(cfg, vae.NewRand(1234))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer model.Close()
//
//	if err := model.PartialFit(batch); err != nil {
//	    log.Fatal(err)
//	}
//	loss, _ := model.Loss(batch)
package vae

import (
	"math/rand/v2"

	"github.com/born-ml/vae/internal/vae"
)

// Model is a trainable VAE. It is not safe for concurrent use.
type Model = vae.Model

// Network is the parameter set and forward computation of a VAE.
type Network = vae.Network

// Config describes a VAE.
type Config = vae.Config

// Architecture holds the hidden-layer widths.
type Architecture = vae.Architecture

// Matrix is a dense row-major batch.
type Matrix = vae.Matrix

// DecoderDistribution names the decoder likelihood.
type DecoderDistribution = vae.DecoderDistribution

// Decoder distributions.
const (
	Bernoulli = vae.Bernoulli
	Gaussian  = vae.Gaussian
)

// OptimizerKind selects the update rule.
type OptimizerKind = vae.OptimizerKind

// Optimizers.
const (
	Adam = vae.Adam
	SGD  = vae.SGD
)

// Estimator selects how the encoder gradient is estimated.
type Estimator = vae.Estimator

// Reparameterized is the reparameterization-trick estimator.
type Reparameterized = vae.Reparameterized

// ScoreFunction is the log-derivative estimator.
type ScoreFunction = vae.ScoreFunction

// ScoreFunctionWithBaseline is the score-function estimator with a Monte
// Carlo baseline of Samples decoder evaluations.
type ScoreFunctionWithBaseline = vae.ScoreFunctionWithBaseline

// DefaultMonteCarloSamples is the baseline sample count when Samples is zero.
const DefaultMonteCarloSamples = vae.DefaultMonteCarloSamples

// Errors.
var (
	ErrInvalidConfig      = vae.ErrInvalidConfig
	ErrUnsupportedDecoder = vae.ErrUnsupportedDecoder
	ErrShapeMismatch      = vae.ErrShapeMismatch
	ErrCheckpointMismatch = vae.ErrCheckpointMismatch
	ErrClosed             = vae.ErrClosed
)

// New builds and initializes a model. rng drives every random draw the
// model makes.
func New(cfg Config, rng *rand.Rand) (*Model, error) {
	return vae.New(cfg, rng)
}

// Build validates cfg and allocates an initialized network without
// optimizer state.
func Build(cfg Config, rng *rand.Rand) (*Network, error) {
	return vae.Build(cfg, rng)
}

// NewFromNetwork attaches optimizers to a network returned by Build.
func NewFromNetwork(net *Network, rng *rand.Rand) *Model {
	return vae.NewFromNetwork(net, rng)
}

// DefaultConfig returns the MNIST configuration: 784 inputs, 20 latents and
// hidden layers of 500 units.
func DefaultConfig() Config {
	return vae.DefaultConfig()
}

// Uniform returns an architecture with all hidden widths equal to n.
func Uniform(n int) Architecture {
	return vae.Uniform(n)
}

// NewMatrix allocates a zero rows×cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return vae.NewMatrix(rows, cols)
}

// EstimatorByName maps "reparam", "score" and "mc" to an estimator.
func EstimatorByName(name string, samples int) (Estimator, error) {
	return vae.EstimatorByName(name, samples)
}

// NewRand returns a PCG random source seeded from seed.
func NewRand(seed uint64) *rand.Rand {
	return vae.NewRand(seed)
}
