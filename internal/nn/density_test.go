package nn_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/vae/internal/autodiff"
	"github.com/born-ml/vae/internal/backend/cpu"
	"github.com/born-ml/vae/internal/nn"
	"github.com/born-ml/vae/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

func fromSlice(t *testing.T, data []float64, shape tensor.Shape) *tensor.Tensor[*cpu.CPUBackend] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, cpu.New())
	require.NoError(t, err)
	return x
}

func TestLogNormalDensity_MatchesDistuv(t *testing.T) {
	x := []float64{0.3, -1.2, 2.0, 0.0, 0.5, -0.7}
	mean := []float64{0.1, -1.0, 1.5, 0.2, 0.0, -0.5}
	std := []float64{1.0, 0.5, 2.0, 0.3, 1.5, 0.8}

	got := nn.LogNormalDensity(
		fromSlice(t, x, tensor.Shape{2, 3}),
		fromSlice(t, mean, tensor.Shape{2, 3}),
		fromSlice(t, std, tensor.Shape{2, 3}),
	)
	require.Equal(t, tensor.Shape{2}, got.Shape())

	for row := 0; row < 2; row++ {
		var want float64
		for j := 0; j < 3; j++ {
			i := row*3 + j
			want += distuv.Normal{Mu: mean[i], Sigma: std[i]}.LogProb(x[i])
		}
		assert.InDelta(t, want, got.Data()[row], 1e-12)
	}
}

func TestLogNormalDensity_BroadcastSamples(t *testing.T) {
	// [n=2, batch=1, d=2] against [batch=1, d=2] parameters.
	x := fromSlice(t, []float64{0, 0, 1, 1}, tensor.Shape{2, 1, 2})
	mean := fromSlice(t, []float64{0, 0}, tensor.Shape{1, 2})
	std := fromSlice(t, []float64{1, 1}, tensor.Shape{1, 2})

	got := nn.LogNormalDensity(x, mean, std)
	require.Equal(t, tensor.Shape{2, 1}, got.Shape())
	assert.InDelta(t, -math.Log(2*math.Pi), got.Data()[0], 1e-12)
	assert.InDelta(t, -math.Log(2*math.Pi)-1, got.Data()[1], 1e-12)
}

func TestBernoulliLogitDensity(t *testing.T) {
	x := []float64{1, 0, 1, 0}
	logits := []float64{2.0, -1.0, -800, 800}

	got := nn.BernoulliLogitDensity(fromSlice(t, x, tensor.Shape{2, 2}), fromSlice(t, logits, tensor.Shape{2, 2}))
	require.Equal(t, tensor.Shape{2}, got.Shape())

	// log σ(2) + log(1-σ(-1))
	want0 := math.Log(1/(1+math.Exp(-2))) + math.Log(1-1/(1+math.Exp(1)))
	assert.InDelta(t, want0, got.Data()[0], 1e-12)

	// Extreme logits against the wrong label stay finite: -800 + -800
	assert.InDelta(t, -1600.0, got.Data()[1], 1e-9)
	assert.False(t, math.IsInf(got.Data()[1], 0))
}

func TestBernoulliLogitDensity_NonPositive(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	backend := cpu.New()
	logits := tensor.Randn(tensor.Shape{8, 5}, rng, backend).MulScalar(3)
	x := tensor.Bernoulli(tensor.Full(tensor.Shape{8, 5}, 0.5, backend).Raw(), rng, backend)

	for _, v := range nn.BernoulliLogitDensity(x, logits).Data() {
		assert.LessOrEqual(t, v, 0.0)
	}
}

func TestKLDivergence(t *testing.T) {
	t.Run("zero at standard normal", func(t *testing.T) {
		kl := nn.KLDivergence(fromSlice(t, []float64{0, 0, 0}, tensor.Shape{1, 3}), fromSlice(t, []float64{1, 1, 1}, tensor.Shape{1, 3}))
		assert.InDelta(t, 0.0, kl.Data()[0], 1e-15)
	})

	t.Run("non-negative", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(5, 6))
		backend := cpu.New()
		mean := tensor.Randn(tensor.Shape{64, 4}, rng, backend).MulScalar(2)
		logVar := tensor.Randn(tensor.Shape{64, 4}, rng, backend).MulScalar(3)
		std := logVar.MulScalar(0.5).Exp()

		kl := nn.KLDivergence(mean, std)
		require.Equal(t, tensor.Shape{64}, kl.Shape())
		for _, v := range kl.Data() {
			assert.Greater(t, v, 0.0)
		}
	})

	t.Run("closed form", func(t *testing.T) {
		// KL(N(1, 4) || N(0,1)) = 0.5 * (4 + 1 - 1 - 2 log 2)
		kl := nn.KLDivergence(fromSlice(t, []float64{1}, tensor.Shape{1, 1}), fromSlice(t, []float64{2}, tensor.Shape{1, 1}))
		assert.InDelta(t, 0.5*(4-2*math.Ln2), kl.Data()[0], 1e-12)
	})
}

func TestLogVarDensities_MatchStd(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))
	backend := cpu.New()
	x := tensor.Randn(tensor.Shape{6, 3}, rng, backend)
	mean := tensor.Randn(tensor.Shape{6, 3}, rng, backend)
	logVar := tensor.Randn(tensor.Shape{6, 3}, rng, backend).MulScalar(2)
	std := logVar.MulScalar(0.5).Exp()

	assert.True(t, floats.EqualApprox(
		nn.LogNormalDensity(x, mean, std).Data(),
		nn.LogNormalDensityLogVar(x, mean, logVar).Data(), 1e-10))
	assert.True(t, floats.EqualApprox(
		nn.KLDivergence(mean, std).Data(),
		nn.KLDivergenceLogVar(mean, logVar).Data(), 1e-10))
}

func TestLogVarDensities_ExtremeLogVariance(t *testing.T) {
	t.Run("tiny variance", func(t *testing.T) {
		// σ = exp(-400): σ² underflows to zero, σ itself does not.
		const logVar = -800.0
		offset := 0.5 * math.Exp(-400)
		got := nn.LogNormalDensityLogVar(
			fromSlice(t, []float64{offset}, tensor.Shape{1, 1}),
			fromSlice(t, []float64{0}, tensor.Shape{1, 1}),
			fromSlice(t, []float64{logVar}, tensor.Shape{1, 1}),
		).Item()
		assert.InDelta(t, -0.5*math.Log(2*math.Pi)+400-0.125, got, 1e-9)

		old := nn.LogNormalDensity(
			fromSlice(t, []float64{offset}, tensor.Shape{1, 1}),
			fromSlice(t, []float64{0}, tensor.Shape{1, 1}),
			fromSlice(t, []float64{math.Exp(-400)}, tensor.Shape{1, 1}),
		).Item()
		assert.True(t, math.IsNaN(old) || math.IsInf(old, 0), "std form = %v", old)
	})

	t.Run("huge variance", func(t *testing.T) {
		// exp(½·1500) overflows.
		got := nn.LogNormalDensityLogVar(
			fromSlice(t, []float64{1}, tensor.Shape{1, 1}),
			fromSlice(t, []float64{0}, tensor.Shape{1, 1}),
			fromSlice(t, []float64{1500}, tensor.Shape{1, 1}),
		).Item()
		assert.InDelta(t, -0.5*math.Log(2*math.Pi)-750, got, 1e-9)
	})

	t.Run("KL with vanishing variance", func(t *testing.T) {
		kl := nn.KLDivergenceLogVar(
			fromSlice(t, []float64{1}, tensor.Shape{1, 1}),
			fromSlice(t, []float64{-2000}, tensor.Shape{1, 1}),
		).Item()
		assert.InDelta(t, 0.5*(1-1+2000), kl, 1e-9)
	})
}

func TestDensity_Gradients(t *testing.T) {
	x0 := []float64{0.4, -0.3, 1.1, 0.2}
	target := []float64{1, 0, 1, 1}

	// Mean over rows of KL(mean=x, std=exp(x)) - Bernoulli(target | logits=x)
	f := func(backend *autodiff.AutodiffBackend[*cpu.CPUBackend], v []float64) (*tensor.Tensor[*autodiff.AutodiffBackend[*cpu.CPUBackend]], *tensor.RawTensor) {
		x, err := tensor.FromSlice(v, tensor.Shape{2, 2}, backend)
		require.NoError(t, err)
		tt, err := tensor.FromSlice(target, tensor.Shape{2, 2}, backend)
		require.NoError(t, err)
		kl := nn.KLDivergence(x, x.Exp())
		ld := nn.BernoulliLogitDensity(tt, x)
		ln := nn.LogNormalDensity(tt, x, x.MulScalar(0.5).Exp())
		lnv := nn.LogNormalDensityLogVar(tt, x.MulScalar(0.3), x)
		klv := nn.KLDivergenceLogVar(x.MulScalar(-1), x)
		return kl.Sub(ld).Add(ln).Add(lnv).Add(klv).Mean(), x.Raw()
	}

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	loss, xRaw := f(backend, x0)
	got := autodiff.Backward(loss, backend)[xRaw].Data()

	plain := autodiff.New(cpu.New())
	want := fd.Gradient(nil, func(v []float64) float64 {
		l, _ := f(plain, v)
		return l.Item()
	}, x0, &fd.Settings{Formula: fd.Central, Step: 1e-6})

	assert.True(t, floats.EqualApprox(got, want, 1e-5), "autodiff %v, finite-difference %v", got, want)
}
