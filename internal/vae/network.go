package vae

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/vae/internal/autodiff"
	"github.com/born-ml/vae/internal/backend/cpu"
	"github.com/born-ml/vae/internal/nn"
	"github.com/born-ml/vae/internal/tensor"
)

// Backend is the differentiable CPU backend every model runs on.
type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

// Tensor is a tensor on Backend.
type Tensor = tensor.Tensor[Backend]

// Network is the parameter set and forward computation of a VAE, without
// optimizer state.
//
// The encoder maps x to the posterior mean and log-variance through two
// softplus hidden layers; the decoder maps z back to input space through two
// softplus hidden layers and a linear head.
type Network struct {
	cfg     Config
	backend Backend

	encoder    *nn.Sequential[Backend]
	meanHead   *nn.Linear[Backend]
	logVarHead *nn.Linear[Backend]
	decoder    *nn.Sequential[Backend]

	encoderParams []*nn.Parameter[Backend]
	decoderParams []*nn.Parameter[Backend]
}

// Build validates cfg and allocates a freshly initialized network.
//
// Weights are drawn from rng with variance-scaling initialization; biases
// start at zero. Build has no other side effects.
func Build(cfg Config, rng *rand.Rand) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	backend := autodiff.New(cpu.New())
	initializer := nn.NewVarianceScaling(rng)
	arch := cfg.Architecture
	softplus := nn.NewSoftplus[Backend]

	n := &Network{cfg: cfg, backend: backend}

	n.encoder = nn.NewSequential[Backend](
		nn.NewLinear[Backend]("encoder_h1", cfg.InputDim, arch.EncoderHidden1, softplus(), initializer, backend),
		nn.NewLinear[Backend]("encoder_h2", arch.EncoderHidden1, arch.EncoderHidden2, softplus(), initializer, backend),
	)
	n.meanHead = nn.NewLinear[Backend]("encoder_out_mean", arch.EncoderHidden2, cfg.LatentDim, nil, initializer, backend)
	n.logVarHead = nn.NewLinear[Backend]("encoder_out_log_sigma_sq", arch.EncoderHidden2, cfg.LatentDim, nil, initializer, backend)

	n.decoder = nn.NewSequential[Backend](
		nn.NewLinear[Backend]("decoder_h1", cfg.LatentDim, arch.DecoderHidden1, softplus(), initializer, backend),
		nn.NewLinear[Backend]("decoder_h2", arch.DecoderHidden1, arch.DecoderHidden2, softplus(), initializer, backend),
		nn.NewLinear[Backend]("decoder_out_mean", arch.DecoderHidden2, cfg.InputDim, nil, initializer, backend),
	)

	n.encoderParams = append(n.encoder.Parameters(), n.meanHead.Parameters()...)
	n.encoderParams = append(n.encoderParams, n.logVarHead.Parameters()...)
	n.decoderParams = n.decoder.Parameters()

	return n, nil
}

// Config returns the network configuration with defaults applied.
func (n *Network) Config() Config {
	return n.cfg
}

// Backend returns the backend the parameters live on.
func (n *Network) Backend() Backend {
	return n.backend
}

// EncoderParameters returns the encoder parameters in checkpoint order.
func (n *Network) EncoderParameters() []*nn.Parameter[Backend] {
	return n.encoderParams
}

// DecoderParameters returns the decoder parameters in checkpoint order.
func (n *Network) DecoderParameters() []*nn.Parameter[Backend] {
	return n.decoderParams
}

// Parameters returns encoder then decoder parameters.
func (n *Network) Parameters() []*nn.Parameter[Backend] {
	params := make([]*nn.Parameter[Backend], 0, len(n.encoderParams)+len(n.decoderParams))
	params = append(params, n.encoderParams...)
	return append(params, n.decoderParams...)
}

// NumParameters returns the number of scalar weights.
func (n *Network) NumParameters() int {
	return nn.CountElements(n.Parameters())
}

// encode returns the posterior mean and log-variance of x.
func (n *Network) encode(x *Tensor) (mean, logVar *Tensor) {
	h := n.encoder.Forward(x)
	return n.meanHead.Forward(h), n.logVarHead.Forward(h)
}

// decode returns the decoder head output for z: logits for a Bernoulli
// decoder, the mean for a Gaussian one.
func (n *Network) decode(z *Tensor) *Tensor {
	return n.decoder.Forward(z)
}

// reconstruction maps decoder output to data space.
func (n *Network) reconstruction(out *Tensor) *Tensor {
	if n.cfg.Decoder == Bernoulli {
		return out.Sigmoid()
	}
	return out
}

// decoderLogDensity returns log p(x|z) summed over features. out may carry
// extra leading dimensions; x broadcasts against it.
func (n *Network) decoderLogDensity(x, out *Tensor) *Tensor {
	switch n.cfg.Decoder {
	case Bernoulli:
		return nn.BernoulliLogitDensity(x, out)
	case Gaussian:
		return nn.LogNormalDensity(x, out, tensor.Ones(tensor.Shape{1}, n.backend))
	default:
		panic(fmt.Sprintf("vae: unsupported decoder %q", n.cfg.Decoder))
	}
}

// binarize draws x ~ Bernoulli(batch) element-wise.
func (n *Network) binarize(batch *Matrix, rng *rand.Rand) *Tensor {
	return tensor.Bernoulli(batch.toRaw(), rng, n.backend)
}

// pass holds one stochastic forward pass through the network.
type pass struct {
	x      *Tensor // binarized input [batch, input]
	mean   *Tensor // [batch, latent]
	logVar *Tensor // [batch, latent]
	std    *Tensor // exp(½ logVar)
	z      *Tensor // reparameterized sample, detached for score-function estimators
	out    *Tensor // decoder output [batch, input]

	decoderLogDensity *Tensor // log p(x|z) [batch]
	encoderLogDensity *Tensor // log q(z|x) [batch]
	kl                *Tensor // KL(q(z|x) ‖ N(0,I)) [batch]
}

// forward binarizes batch, samples z = mean + std·ε and evaluates all
// densities. When detachLatent is set, no gradient flows from z back into
// the encoder.
func (n *Network) forward(batch *Matrix, rng *rand.Rand, detachLatent bool) *pass {
	p := &pass{x: n.binarize(batch, rng)}
	p.mean, p.logVar = n.encode(p.x)
	p.std = p.logVar.MulScalar(0.5).Exp()

	eps := tensor.Randn(tensor.Shape{batch.Rows, n.cfg.LatentDim}, rng, n.backend)
	p.z = p.mean.Add(p.std.Mul(eps))
	if detachLatent {
		p.z = p.z.Detach()
	}

	p.out = n.decode(p.z)
	p.decoderLogDensity = n.decoderLogDensity(p.x, p.out)
	p.encoderLogDensity = nn.LogNormalDensityLogVar(p.z, p.mean, p.logVar)
	p.kl = nn.KLDivergenceLogVar(p.mean, p.logVar)
	return p
}

// negativeELBO is mean(KL − log p(x|z)): the decoder cost and the reported loss.
func (p *pass) negativeELBO() *Tensor {
	return p.kl.Sub(p.decoderLogDensity).Mean()
}
