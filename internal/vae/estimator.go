package vae

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/vae/internal/tensor"
)

// DefaultMonteCarloSamples is the baseline sample count used when
// ScoreFunctionWithBaseline.Samples is zero.
const DefaultMonteCarloSamples = 10

// Estimator selects how the encoder gradient is estimated.
//
// The decoder cost and the reported loss are the same for every estimator;
// only the encoder cost differs. The set of estimators is closed:
// Reparameterized, ScoreFunction and ScoreFunctionWithBaseline.
type Estimator interface {
	// Name returns a short identifier used in logs and checkpoint names.
	Name() string

	// detachLatent reports whether the latent sample is cut from the encoder.
	detachLatent() bool

	// encoderCost builds the scalar cost minimized over encoder parameters.
	encoderCost(n *Network, p *pass, rng *rand.Rand) *Tensor
}

// Reparameterized differentiates through z = mean + std·ε:
//
//	encoder cost = mean(KL − log p(x|z))
type Reparameterized struct{}

// Name returns "reparam".
func (Reparameterized) Name() string { return "reparam" }

func (Reparameterized) detachLatent() bool { return false }

func (Reparameterized) encoderCost(_ *Network, p *pass, _ *rand.Rand) *Tensor {
	return p.negativeELBO()
}

// ScoreFunction is the log-derivative estimator. The latent sample is held
// constant and the encoder learns through log q(z|x):
//
//	encoder cost = mean(KL − log q(z|x)·stop(log p(x|z)))
type ScoreFunction struct{}

// Name returns "score".
func (ScoreFunction) Name() string { return "score" }

func (ScoreFunction) detachLatent() bool { return true }

func (ScoreFunction) encoderCost(_ *Network, p *pass, _ *rand.Rand) *Tensor {
	signal := p.decoderLogDensity.Detach()
	return p.kl.Sub(p.encoderLogDensity.Mul(signal)).Mean()
}

// ScoreFunctionWithBaseline is the score-function estimator with a Monte
// Carlo control variate. Samples extra latents are drawn per example from
// the posterior and decoded with the shared decoder; their mean decoder
// log-density is the baseline:
//
//	encoder cost = mean(KL − log q(z|x)·(stop(log p(x|z)) − baseline))
//
// The baseline carries no gradient and does not enter the decoder cost.
type ScoreFunctionWithBaseline struct {
	Samples int
}

// Name returns "mc".
func (ScoreFunctionWithBaseline) Name() string { return "mc" }

func (ScoreFunctionWithBaseline) detachLatent() bool { return true }

func (e ScoreFunctionWithBaseline) encoderCost(n *Network, p *pass, rng *rand.Rand) *Tensor {
	baseline := e.baseline(n, p, rng)
	signal := p.decoderLogDensity.Detach().Sub(baseline)
	return p.kl.Sub(p.encoderLogDensity.Mul(signal)).Mean()
}

// baseline returns the per-example mean of log p(x|z_s) over Samples
// posterior draws z_s. Nothing it computes is recorded on the tape.
func (e ScoreFunctionWithBaseline) baseline(n *Network, p *pass, rng *rand.Rand) *Tensor {
	defer n.backend.Tape().Pause()()

	samples := e.Samples
	if samples == 0 {
		samples = DefaultMonteCarloSamples
	}
	batch, latent := p.mean.Shape()[0], p.mean.Shape()[1]

	// z_s = mean + std·ε_s, [samples, batch, latent]
	eps := tensor.Randn(tensor.Shape{samples, batch, latent}, rng, n.backend)
	z := eps.Mul(p.std.Detach()).Add(p.mean.Detach())

	// Decode all samples·batch latents in one pass.
	out := n.decode(z.Reshape(samples*batch, latent)).Reshape(samples, batch, n.cfg.InputDim)

	// [samples, batch] → [batch]
	return n.decoderLogDensity(p.x, out).MeanDim(0, false).Detach()
}

// EstimatorByName maps "reparam", "score" and "mc" to an estimator. samples
// sets the baseline sample count for "mc".
func EstimatorByName(name string, samples int) (Estimator, error) {
	switch name {
	case "reparam":
		return Reparameterized{}, nil
	case "score":
		return ScoreFunction{}, nil
	case "mc":
		if samples == 0 {
			samples = DefaultMonteCarloSamples
		}
		return ScoreFunctionWithBaseline{Samples: samples}, nil
	default:
		return nil, fmt.Errorf("%w: unknown estimator %q", ErrInvalidConfig, name)
	}
}
