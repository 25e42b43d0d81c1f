package nn

import (
	"math"

	"github.com/born-ml/vae/internal/tensor"
)

// halfLog2Pi is 0.5 * log(2π).
var halfLog2Pi = 0.5 * math.Log(2*math.Pi)

// LogNormalDensity returns the log-density of x under a diagonal Gaussian,
// summed over the last (feature) dimension:
//
//	Σ_j [ -½·log(2π) - log σ_j - (x_j - μ_j)² / (2σ_j²) ]
//
// mean and std broadcast against x. For x of shape [batch, d] the result has
// shape [batch]; for [n, batch, d] it has shape [n, batch].
func LogNormalDensity[B tensor.Backend](x, mean, std *tensor.Tensor[B]) *tensor.Tensor[B] {
	diff := x.Sub(mean)
	quad := diff.Square().Div(std.Square().MulScalar(2))
	perFeature := std.Log().Add(quad).MulScalar(-1).AddScalar(-halfLog2Pi)
	return perFeature.SumDim(-1, false)
}

// LogNormalDensityLogVar is LogNormalDensity parameterized by the
// log-variance:
//
//	Σ_j [ -½·log(2π) - ½·logVar_j - ½·((x_j - μ_j)·exp(-½·logVar_j))² ]
//
// log σ is taken as ½·logVar directly, so the result stays finite where
// exp(½·logVar) would underflow to zero or overflow.
func LogNormalDensityLogVar[B tensor.Backend](x, mean, logVar *tensor.Tensor[B]) *tensor.Tensor[B] {
	scaled := x.Sub(mean).Mul(logVar.MulScalar(-0.5).Exp())
	perFeature := logVar.Add(scaled.Square()).MulScalar(-0.5).AddScalar(-halfLog2Pi)
	return perFeature.SumDim(-1, false)
}

// BernoulliLogitDensity returns the log-likelihood of binary x under a
// Bernoulli distribution parameterized by logits, summed over the last
// dimension:
//
//	Σ_j [ x_j·l_j - softplus(l_j) ]
//
// The softplus kernel is evaluated in its overflow-safe form, so large
// logits of either sign stay finite.
func BernoulliLogitDensity[B tensor.Backend](x, logits *tensor.Tensor[B]) *tensor.Tensor[B] {
	return x.Mul(logits).Sub(logits.Softplus()).SumDim(-1, false)
}

// KLDivergence returns KL(N(μ, σ²) ‖ N(0, I)) per row, summed over the last
// dimension:
//
//	½ Σ_j ( σ_j² + μ_j² - 1 - 2·log σ_j )
//
// The result is non-negative and zero only when μ = 0 and σ = 1.
func KLDivergence[B tensor.Backend](mean, std *tensor.Tensor[B]) *tensor.Tensor[B] {
	return std.Square().
		Add(mean.Square()).
		AddScalar(-1).
		Sub(std.Log().MulScalar(2)).
		SumDim(-1, false).
		MulScalar(0.5)
}

// KLDivergenceLogVar is KLDivergence parameterized by the log-variance:
//
//	½ Σ_j ( exp(logVar_j) + μ_j² - 1 - logVar_j )
func KLDivergenceLogVar[B tensor.Backend](mean, logVar *tensor.Tensor[B]) *tensor.Tensor[B] {
	return logVar.Exp().
		Add(mean.Square()).
		AddScalar(-1).
		Sub(logVar).
		SumDim(-1, false).
		MulScalar(0.5)
}
