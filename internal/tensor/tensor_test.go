package tensor_test

import (
	"math/rand/v2"
	"testing"

	"github.com/born-ml/vae/internal/backend/cpu"
	"github.com/born-ml/vae/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestTensor_Fluent(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	y := x.MulScalar(2).AddScalar(1) // [3 5 7 9]
	assert.Equal(t, []float64{3, 5, 7, 9}, y.Data())
	assert.Equal(t, []float64{1, 4, 9, 16}, x.Square().Data())
	assert.Equal(t, []float64{1, 3, 2, 4}, x.T().Data())
	assert.Equal(t, tensor.Shape{4}, x.Reshape(4).Shape())
	assert.Equal(t, []float64{4, 6}, x.SumDim(0, false).Data())
	assert.InDelta(t, 2.5, x.Mean().Item(), 1e-12)
	assert.InDelta(t, 10.0, x.Sum().Item(), 1e-12)
	assert.Equal(t, []float64{7, 10, 15, 22}, x.MatMul(x).Data())

	_, err = tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{2, 2}, backend)
	assert.Error(t, err)
}

func TestCreation(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []float64{0, 0, 0}, tensor.Zeros(tensor.Shape{3}, backend).Data())
	assert.Equal(t, []float64{1, 1}, tensor.Ones(tensor.Shape{2}, backend).Data())
	assert.Equal(t, []float64{0.5, 0.5}, tensor.Full(tensor.Shape{2}, 0.5, backend).Data())

	rng := rand.New(rand.NewPCG(7, 7))
	u := tensor.Uniform(tensor.Shape{1000}, -0.1, 0.1, rng, backend)
	assert.LessOrEqual(t, floats.Max(u.Data()), 0.1)
	assert.GreaterOrEqual(t, floats.Min(u.Data()), -0.1)
}

func TestRandn_Seeded(t *testing.T) {
	backend := cpu.New()

	a := tensor.Randn(tensor.Shape{4, 4}, rand.New(rand.NewPCG(1, 1)), backend)
	b := tensor.Randn(tensor.Shape{4, 4}, rand.New(rand.NewPCG(1, 1)), backend)
	c := tensor.Randn(tensor.Shape{4, 4}, rand.New(rand.NewPCG(2, 1)), backend)

	assert.Equal(t, a.Data(), b.Data())
	assert.NotEqual(t, a.Data(), c.Data())
}

func TestBernoulli(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewPCG(3, 4))

	probs, err := tensor.FromData([]float64{0, 1, -0.5, 1.5}, tensor.Shape{4}, tensor.CPU)
	require.NoError(t, err)
	draw := tensor.Bernoulli(probs, rng, backend)
	assert.Equal(t, []float64{0, 1, 0, 1}, draw.Data())

	half := tensor.Full(tensor.Shape{10000}, 0.3, backend)
	draws := tensor.Bernoulli(half.Raw(), rng, backend).Data()
	for _, v := range draws {
		assert.True(t, v == 0 || v == 1)
	}
	assert.InDelta(t, 0.3, floats.Sum(draws)/float64(len(draws)), 0.02)
}

func TestTensor_Detach(t *testing.T) {
	backend := cpu.New()
	x := tensor.Ones(tensor.Shape{2}, backend)
	d := x.Detach()
	assert.NotSame(t, x.Raw(), d.Raw())
	assert.Equal(t, x.Data(), d.Data())
	assert.Contains(t, x.String(), "CPU")
}
