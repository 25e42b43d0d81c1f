package train_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/born-ml/vae/internal/dataset"
	"github.com/born-ml/vae/internal/train"
	"github.com/born-ml/vae/internal/vae"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func newTrainer(t *testing.T, est vae.Estimator, cfg train.Config) *train.Trainer {
	t.Helper()
	model, err := vae.New(vae.Config{
		InputDim:     16,
		LatentDim:    2,
		Architecture: vae.Uniform(8),
		LearningRate: 0.01,
		Estimator:    est,
	}, newRng(1))
	require.NoError(t, err)
	t.Cleanup(func() { _ = model.Close() })

	splits := dataset.SyntheticSplits(64, 20, 10, 16, newRng(2))
	return &train.Trainer{
		Model:      model,
		Train:      splits.Train,
		Validation: splits.Validation,
		Test:       splits.Test,
		Config:     cfg,
		Rng:        newRng(3),
		Logger:     train.Quiet(),
	}
}

func TestTrainer_Run(t *testing.T) {
	dir := t.TempDir()
	tr := newTrainer(t, vae.ScoreFunctionWithBaseline{Samples: 3}, train.Config{
		Epochs:        4,
		BatchSize:     16,
		EvalBatchSize: 7,
		SaveEvery:     2,
		CheckpointDir: dir,
		LogEvery:      1,
		VarianceEvery: 2,
		VarianceReps:  4,
	})

	reports, err := tr.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 4)

	for i, r := range reports {
		assert.Equal(t, "mc", r.Estimator)
		assert.Equal(t, i+1, r.Epoch)
		assert.Equal(t, 4*(i+1), r.Step)
		assert.Positive(t, r.TrainLoss)
		assert.Positive(t, r.ValidationLoss)
		assert.Negative(t, r.DecoderLogDensity)
	}

	assert.Empty(t, reports[0].Checkpoint)
	assert.Zero(t, reports[0].GradientVariance)
	assert.Equal(t, train.CheckpointPath(dir, "mc", 2), reports[1].Checkpoint)
	assert.Positive(t, reports[1].GradientVariance)

	for _, epoch := range []int{2, 4} {
		_, err := os.Stat(train.CheckpointPath(dir, "mc", epoch))
		assert.NoError(t, err)
	}
	require.NoError(t, tr.Model.RestoreWeights(reports[3].Checkpoint))
}

func TestTrainer_RunCancelled(t *testing.T) {
	tr := newTrainer(t, vae.Reparameterized{}, train.Config{Epochs: 3, BatchSize: 16})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports, err := tr.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
}

func TestTrainer_RunTooFewExamples(t *testing.T) {
	tr := newTrainer(t, vae.Reparameterized{}, train.Config{BatchSize: 1000})
	_, err := tr.Run(context.Background())
	assert.Error(t, err)
}

func TestTrainer_Evaluate(t *testing.T) {
	tr := newTrainer(t, vae.Reparameterized{}, train.Config{EvalBatchSize: 3})

	loss, logDensity, err := tr.Evaluate(tr.Test)
	require.NoError(t, err)
	assert.Positive(t, loss)
	assert.Negative(t, logDensity)

	_, _, err = tr.Evaluate(dataset.Synthetic(0, 16, newRng(1)))
	assert.Error(t, err)
}

func TestGradientVariance(t *testing.T) {
	tr := newTrainer(t, vae.ScoreFunction{}, train.Config{})
	batch := tr.Train.Matrix(0, 8)

	v, err := tr.GradientVariance(batch, 5)
	require.NoError(t, err)
	assert.Positive(t, v)

	_, err = tr.GradientVariance(batch, 1)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := train.WriteCSV(&buf, []train.Report{
		{Estimator: "score", Epoch: 1, Step: 10, TrainLoss: 1.5, ValidationLoss: 2, DecoderLogDensity: -3},
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "estimator", rows[0][0])
	assert.Equal(t, []string{"score", "1", "10", "1.5", "2", "-3", "0", ""}, rows[1])
}
