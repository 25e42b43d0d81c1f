package vae

import "fmt"

// DecoderDistribution names the likelihood p(x|z) of the decoder.
type DecoderDistribution string

// Supported decoder distributions.
const (
	// Bernoulli decodes to per-pixel logits; reconstructions are sigmoid(logits).
	Bernoulli DecoderDistribution = "bernoulli"
	// Gaussian decodes to a mean with fixed unit variance.
	Gaussian DecoderDistribution = "gaussian"
)

// OptimizerKind selects the update rule used for both parameter subsets.
type OptimizerKind string

// Supported optimizers.
const (
	Adam OptimizerKind = "adam"
	SGD  OptimizerKind = "sgd"
)

// Architecture holds the hidden-layer widths of the encoder and decoder.
type Architecture struct {
	EncoderHidden1 int
	EncoderHidden2 int
	DecoderHidden1 int
	DecoderHidden2 int
}

// Uniform returns an architecture whose four hidden layers all have width n.
func Uniform(n int) Architecture {
	return Architecture{EncoderHidden1: n, EncoderHidden2: n, DecoderHidden1: n, DecoderHidden2: n}
}

// Config describes a VAE.
//
// Zero values of Decoder, LearningRate, Estimator and Optimizer take the
// defaults bernoulli, 0.001, Reparameterized and adam. InputDim, LatentDim
// and all Architecture widths must be set.
type Config struct {
	InputDim     int
	LatentDim    int
	Architecture Architecture
	Decoder      DecoderDistribution
	LearningRate float64
	Estimator    Estimator
	Optimizer    OptimizerKind
}

// DefaultConfig returns the MNIST setup: 784 inputs, 20 latents, four
// hidden layers of 500 units.
func DefaultConfig() Config {
	return Config{
		InputDim:     784,
		LatentDim:    20,
		Architecture: Uniform(500),
		Decoder:      Bernoulli,
		LearningRate: 0.001,
		Estimator:    Reparameterized{},
		Optimizer:    Adam,
	}
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.Decoder == "" {
		c.Decoder = Bernoulli
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.001
	}
	if c.Estimator == nil {
		c.Estimator = Reparameterized{}
	}
	if c.Optimizer == "" {
		c.Optimizer = Adam
	}
	if e, ok := c.Estimator.(ScoreFunctionWithBaseline); ok && e.Samples == 0 {
		c.Estimator = ScoreFunctionWithBaseline{Samples: DefaultMonteCarloSamples}
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()

	switch c.Decoder {
	case Bernoulli, Gaussian:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDecoder, c.Decoder)
	}

	dims := []struct {
		name  string
		value int
	}{
		{"input dim", c.InputDim},
		{"latent dim", c.LatentDim},
		{"encoder hidden 1", c.Architecture.EncoderHidden1},
		{"encoder hidden 2", c.Architecture.EncoderHidden2},
		{"decoder hidden 1", c.Architecture.DecoderHidden1},
		{"decoder hidden 2", c.Architecture.DecoderHidden2},
	}
	for _, d := range dims {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, d.name, d.value)
		}
	}

	if c.LearningRate < 0 {
		return fmt.Errorf("%w: learning rate must be positive, got %g", ErrInvalidConfig, c.LearningRate)
	}

	switch c.Optimizer {
	case Adam, SGD:
	default:
		return fmt.Errorf("%w: unknown optimizer %q", ErrInvalidConfig, c.Optimizer)
	}

	if e, ok := c.Estimator.(ScoreFunctionWithBaseline); ok && e.Samples < 1 {
		return fmt.Errorf("%w: monte carlo samples must be at least 1, got %d", ErrInvalidConfig, e.Samples)
	}
	return nil
}
