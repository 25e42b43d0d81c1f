// Package vae implements a variational autoencoder with a choice of encoder
// gradient estimators.
//
// A Model owns its network, two optimizers (one per parameter subset), a
// gradient tape and a random source. Every training step runs two updates:
// the decoder parameters minimize mean(KL − log p(x|z)), then the encoder
// parameters minimize the cost of the configured Estimator. Each update
// draws a fresh binarization of the batch and fresh reparameterization
// noise.
//
// A Model is not safe for concurrent use.
package vae

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/born-ml/vae/internal/autodiff"
	"github.com/born-ml/vae/internal/nn"
	"github.com/born-ml/vae/internal/optim"
	"github.com/born-ml/vae/internal/tensor"
)

// checkpointModelType is the model type recorded in checkpoint headers.
const checkpointModelType = "VAE"

// Model is a trainable VAE.
//
// Example:
//
//	cfg := vae.DefaultConfig()
//	cfg.Estimator = vae.ScoreFunctionWithBaseline{Samples: 10}
//	model, err := vae.New(cfg, rand.New(rand.NewPCG(1234, 1234)))
//	if err != nil {
//	    return err
//	}
//	defer model.Close()
//
//	for _, batch := range batches {
//	    if err := model.PartialFit(batch); err != nil {
//	        return err
//	    }
//	}
type Model struct {
	net       *Network
	estimator Estimator
	rng       *rand.Rand

	decoderOpt optim.Optimizer
	encoderOpt optim.Optimizer

	closed bool
}

// New builds a network from cfg and attaches its optimizers. rng drives
// initialization and every later random draw of the model.
func New(cfg Config, rng *rand.Rand) (*Model, error) {
	net, err := Build(cfg, rng)
	if err != nil {
		return nil, err
	}
	return NewFromNetwork(net, rng), nil
}

// NewFromNetwork attaches fresh optimizers to an existing network.
func NewFromNetwork(net *Network, rng *rand.Rand) *Model {
	cfg := net.Config()
	return &Model{
		net:        net,
		estimator:  cfg.Estimator,
		rng:        rng,
		decoderOpt: newOptimizer(cfg, net.DecoderParameters()),
		encoderOpt: newOptimizer(cfg, net.EncoderParameters()),
	}
}

// NewRand returns a PCG random source seeded from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newOptimizer(cfg Config, params []*nn.Parameter[Backend]) optim.Optimizer {
	if cfg.Optimizer == SGD {
		return optim.NewSGD(params, optim.SGDConfig{LR: cfg.LearningRate})
	}
	return optim.NewAdam(params, optim.AdamConfig{LR: cfg.LearningRate})
}

// Config returns the model configuration with defaults applied.
func (m *Model) Config() Config {
	return m.net.Config()
}

// Network returns the underlying network.
func (m *Model) Network() *Network {
	return m.net
}

// Estimator returns the encoder gradient estimator.
func (m *Model) Estimator() Estimator {
	return m.estimator
}

func (m *Model) checkBatch(batch *Matrix) error {
	if m.closed {
		return ErrClosed
	}
	return batch.check(m.net.cfg.InputDim)
}

// gradients records cost on a cleared tape and returns its value and the
// gradients of every recorded tensor.
func (m *Model) gradients(cost func() *Tensor) (float64, map[*tensor.RawTensor]*tensor.RawTensor) {
	tape := m.net.backend.Tape()
	tape.Clear()
	tape.StartRecording()
	loss := cost()
	tape.StopRecording()

	grads := autodiff.Backward(loss, m.net.backend)
	tape.Clear()
	return loss.Item(), grads
}

func (m *Model) decoderCost(batch *Matrix) func() *Tensor {
	return func() *Tensor {
		return m.net.forward(batch, m.rng, m.estimator.detachLatent()).negativeELBO()
	}
}

func (m *Model) encoderCost(batch *Matrix) func() *Tensor {
	return func() *Tensor {
		p := m.net.forward(batch, m.rng, m.estimator.detachLatent())
		return m.estimator.encoderCost(m.net, p, m.rng)
	}
}

// PartialFit runs one decoder update followed by one encoder update on batch.
func (m *Model) PartialFit(batch *Matrix) error {
	if err := m.checkBatch(batch); err != nil {
		return err
	}

	_, grads := m.gradients(m.decoderCost(batch))
	m.decoderOpt.Step(grads)

	_, grads = m.gradients(m.encoderCost(batch))
	m.encoderOpt.Step(grads)
	return nil
}

// DecoderGradients returns the gradient of the decoder cost with respect to
// the decoder parameters, flattened in parameter order. Parameters are not
// updated.
func (m *Model) DecoderGradients(batch *Matrix) ([]float64, error) {
	if err := m.checkBatch(batch); err != nil {
		return nil, err
	}
	_, grads := m.gradients(m.decoderCost(batch))
	return optim.Flatten(m.net.decoderParams, grads), nil
}

// EncoderGradients returns the estimator's gradient of the encoder cost with
// respect to the encoder parameters, flattened in parameter order.
// Parameters are not updated.
func (m *Model) EncoderGradients(batch *Matrix) ([]float64, error) {
	if err := m.checkBatch(batch); err != nil {
		return nil, err
	}
	_, grads := m.gradients(m.encoderCost(batch))
	return optim.Flatten(m.net.encoderParams, grads), nil
}

// DecoderLogDensity returns the batch mean of log p(x|z) for one sample z
// per example.
func (m *Model) DecoderLogDensity(batch *Matrix) (float64, error) {
	if err := m.checkBatch(batch); err != nil {
		return 0, err
	}
	return m.net.forward(batch, m.rng, false).decoderLogDensity.Mean().Item(), nil
}

// Loss returns the negative ELBO mean(KL − log p(x|z)) on batch. The value
// is the same quantity for every estimator.
func (m *Model) Loss(batch *Matrix) (float64, error) {
	if err := m.checkBatch(batch); err != nil {
		return 0, err
	}
	return m.net.forward(batch, m.rng, false).negativeELBO().Item(), nil
}

// Transform returns the posterior mean of each example, [rows, latent].
// The encoder sees the raw intensities rather than a binarization, so the
// result depends only on batch and the current weights.
func (m *Model) Transform(batch *Matrix) (*Matrix, error) {
	if err := m.checkBatch(batch); err != nil {
		return nil, err
	}
	mean, _ := m.net.encode(tensor.New(batch.toRaw(), m.net.backend))
	return matrixFrom(mean), nil
}

// Reconstruct encodes, samples and decodes batch. The result has the shape
// of batch; for a Bernoulli decoder its values are probabilities.
func (m *Model) Reconstruct(batch *Matrix) (*Matrix, error) {
	if err := m.checkBatch(batch); err != nil {
		return nil, err
	}
	p := m.net.forward(batch, m.rng, false)
	return matrixFrom(m.net.reconstruction(p.out)), nil
}

// Generate decodes latent codes z, [rows, latent]. A nil z draws one code
// from the N(0, I) prior and yields a 1×input matrix.
func (m *Model) Generate(z *Matrix) (*Matrix, error) {
	if m.closed {
		return nil, ErrClosed
	}

	var latent *Tensor
	if z == nil {
		latent = tensor.Randn(tensor.Shape{1, m.net.cfg.LatentDim}, m.rng, m.net.backend)
	} else {
		if err := z.check(m.net.cfg.LatentDim); err != nil {
			return nil, fmt.Errorf("latent: %w", err)
		}
		latent = tensor.New(z.toRaw(), m.net.backend)
	}
	return matrixFrom(m.net.reconstruction(m.net.decode(latent))), nil
}

// SaveWeights writes all parameters to a .born checkpoint at path.
// Optimizer state is not saved.
func (m *Model) SaveWeights(path string) error {
	if m.closed {
		return ErrClosed
	}
	cfg := m.net.cfg
	metadata := map[string]string{
		"estimator":  m.estimator.Name(),
		"decoder":    string(cfg.Decoder),
		"input_dim":  strconv.Itoa(cfg.InputDim),
		"latent_dim": strconv.Itoa(cfg.LatentDim),
	}
	if err := nn.Save(path, m.net.Parameters(), checkpointModelType, metadata); err != nil {
		return fmt.Errorf("save weights: %w", err)
	}
	return nil
}

// RestoreWeights loads parameters from a checkpoint written by SaveWeights.
// The checkpoint must hold exactly the model's parameter names and shapes;
// otherwise ErrCheckpointMismatch is returned and no parameter changes.
func (m *Model) RestoreWeights(path string) error {
	if m.closed {
		return ErrClosed
	}
	if _, err := nn.Load(path, m.net.Parameters()); err != nil {
		if errors.Is(err, nn.ErrStateMismatch) {
			return fmt.Errorf("%w: %w", ErrCheckpointMismatch, err)
		}
		return fmt.Errorf("restore weights: %w", err)
	}
	return nil
}

// Close releases the model's execution context. Later calls return ErrClosed.
func (m *Model) Close() error {
	if m.closed {
		return ErrClosed
	}
	m.net.backend.Tape().Clear()
	m.closed = true
	return nil
}
