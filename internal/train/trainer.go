// Package train drives VAE training: epochs over shuffled batches,
// validation after every epoch, periodic checkpoints and a final test
// evaluation.
package train

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/born-ml/vae/internal/dataset"
	"github.com/born-ml/vae/internal/vae"
	"gonum.org/v1/gonum/stat"
)

// Config controls a training run.
type Config struct {
	Epochs        int    // Number of passes over the training set (default: 1)
	BatchSize     int    // Training batch size (default: 128)
	EvalBatchSize int    // Validation/test chunk size (default: 1024)
	SaveEvery     int    // Checkpoint every N epochs; 0 disables checkpoints
	CheckpointDir string // Directory for checkpoints (default: ".")
	LogEvery      int    // Log train loss every N steps; 0 disables step logs
	VarianceEvery int    // Measure encoder gradient variance every N epochs; 0 disables it
	VarianceReps  int    // Gradient samples per variance measurement (default: 10)
}

func (c Config) withDefaults() Config {
	if c.Epochs <= 0 {
		c.Epochs = 1
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 128
	}
	if c.EvalBatchSize <= 0 {
		c.EvalBatchSize = 1024
	}
	if c.CheckpointDir == "" {
		c.CheckpointDir = "."
	}
	if c.VarianceReps <= 1 {
		c.VarianceReps = 10
	}
	return c
}

// Report summarizes one epoch.
type Report struct {
	Estimator         string
	Epoch             int
	Step              int     // Total PartialFit calls so far
	TrainLoss         float64 // Mean loss over the epoch's training batches
	ValidationLoss    float64
	DecoderLogDensity float64 // Mean validation log p(x|z)
	GradientVariance  float64 // Zero unless measured this epoch
	Checkpoint        string  // Path written this epoch, if any
}

// Trainer trains one model on a train/validation/test split.
type Trainer struct {
	Model      *vae.Model
	Train      *dataset.Set
	Validation *dataset.Set
	Test       *dataset.Set
	Config     Config

	// Rng shuffles the training set each epoch.
	Rng *rand.Rand
	// Logger receives progress lines; nil uses log.Default().
	Logger *log.Logger
}

func (t *Trainer) logger() *log.Logger {
	if t.Logger == nil {
		return log.Default()
	}
	return t.Logger
}

// Run trains for the configured number of epochs and returns one report per
// completed epoch. It stops between batches when ctx is cancelled and
// returns the reports so far with ctx.Err().
func (t *Trainer) Run(ctx context.Context) ([]Report, error) {
	cfg := t.Config.withDefaults()
	logger := t.logger()
	name := t.Model.Estimator().Name()

	if t.Train.Len() < cfg.BatchSize {
		return nil, fmt.Errorf("train: %d training examples, need at least one batch of %d", t.Train.Len(), cfg.BatchSize)
	}
	if cfg.SaveEvery > 0 {
		if err := os.MkdirAll(cfg.CheckpointDir, 0o750); err != nil {
			return nil, fmt.Errorf("train: create checkpoint dir: %w", err)
		}
	}

	var reports []Report
	step := 0
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		var losses []float64
		var firstBatch *vae.Matrix

		for batch := range t.Train.Batches(cfg.BatchSize, t.Rng) {
			if err := ctx.Err(); err != nil {
				return reports, err
			}
			if firstBatch == nil {
				firstBatch = batch
			}
			if err := t.Model.PartialFit(batch); err != nil {
				return reports, fmt.Errorf("epoch %d step %d: %w", epoch, step, err)
			}
			step++

			loss, err := t.Model.Loss(batch)
			if err != nil {
				return reports, err
			}
			losses = append(losses, loss)
			if cfg.LogEvery > 0 && step%cfg.LogEvery == 0 {
				logger.Printf("[%s] epoch %d step %d: loss=%.4f", name, epoch, step, loss)
			}
		}

		report := Report{Estimator: name, Epoch: epoch, Step: step, TrainLoss: stat.Mean(losses, nil)}

		if t.Validation != nil && t.Validation.Len() > 0 {
			loss, logDensity, err := t.Evaluate(t.Validation)
			if err != nil {
				return reports, fmt.Errorf("epoch %d validation: %w", epoch, err)
			}
			report.ValidationLoss, report.DecoderLogDensity = loss, logDensity
		}

		if cfg.VarianceEvery > 0 && epoch%cfg.VarianceEvery == 0 {
			v, err := t.GradientVariance(firstBatch, cfg.VarianceReps)
			if err != nil {
				return reports, err
			}
			report.GradientVariance = v
		}

		if cfg.SaveEvery > 0 && epoch%cfg.SaveEvery == 0 {
			path := CheckpointPath(cfg.CheckpointDir, name, epoch)
			if err := t.Model.SaveWeights(path); err != nil {
				return reports, err
			}
			report.Checkpoint = path
		}

		logger.Printf("[%s] epoch %d: train=%.4f val=%.4f log p(x|z)=%.4f",
			name, epoch, report.TrainLoss, report.ValidationLoss, report.DecoderLogDensity)
		reports = append(reports, report)
	}
	return reports, nil
}

// Evaluate returns the mean loss and mean decoder log-density over set,
// weighting each chunk by its size.
func (t *Trainer) Evaluate(set *dataset.Set) (loss, decoderLogDensity float64, err error) {
	if set == nil || set.Len() == 0 {
		return 0, 0, errors.New("train: empty evaluation set")
	}
	size := t.Config.withDefaults().EvalBatchSize

	for chunk := range set.Chunks(size) {
		l, err := t.Model.Loss(chunk)
		if err != nil {
			return 0, 0, err
		}
		d, err := t.Model.DecoderLogDensity(chunk)
		if err != nil {
			return 0, 0, err
		}
		w := float64(chunk.Rows) / float64(set.Len())
		loss += w * l
		decoderLogDensity += w * d
	}
	return loss, decoderLogDensity, nil
}

// GradientVariance estimates the encoder gradient variance on batch: the
// per-coordinate variance over repeats independent gradient estimates,
// averaged over coordinates.
func (t *Trainer) GradientVariance(batch *vae.Matrix, repeats int) (float64, error) {
	return GradientVariance(t.Model, batch, repeats)
}

// GradientVariance is Trainer.GradientVariance for a bare model.
func GradientVariance(model *vae.Model, batch *vae.Matrix, repeats int) (float64, error) {
	if repeats < 2 {
		return 0, fmt.Errorf("train: gradient variance needs at least 2 repeats, got %d", repeats)
	}
	samples := make([][]float64, repeats)
	for i := range samples {
		g, err := model.EncoderGradients(batch)
		if err != nil {
			return 0, err
		}
		samples[i] = g
	}

	column := make([]float64, repeats)
	total := 0.0
	for j := range samples[0] {
		for i := range samples {
			column[i] = samples[i][j]
		}
		total += stat.Variance(column, nil)
	}
	return total / float64(len(samples[0])), nil
}

// CheckpointPath returns <dir>/<estimator>-epoch-<epoch>.born.
func CheckpointPath(dir, estimator string, epoch int) string {
	return filepath.Join(dir, fmt.Sprintf("%s-epoch-%d.born", estimator, epoch))
}

// discard is a logger for callers that want silence.
var discard = log.New(io.Discard, "", 0)

// Quiet returns a logger that drops everything.
func Quiet() *log.Logger {
	return discard
}
