package tensor

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Zeros creates a tensor filled with zeros.
func Zeros[B Backend](shape Shape, b B) *Tensor[B] {
	return New(MustNewRaw(shape, b.Device()), b)
}

// Full creates a tensor filled with value.
func Full[B Backend](shape Shape, value float64, b B) *Tensor[B] {
	raw := MustNewRaw(shape, b.Device())
	data := raw.Data()
	for i := range data {
		data[i] = value
	}
	return New(raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[B Backend](shape Shape, b B) *Tensor[B] {
	return Full(shape, 1, b)
}

// Randn creates a tensor of independent standard normal draws.
func Randn[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[B] {
	raw := MustNewRaw(shape, b.Device())
	FillNormal(raw.Data(), 0, 1, rng)
	return New(raw, b)
}

// Uniform creates a tensor of independent draws from U(lo, hi).
func Uniform[B Backend](shape Shape, lo, hi float64, rng *rand.Rand, b B) *Tensor[B] {
	raw := MustNewRaw(shape, b.Device())
	dist := distuv.Uniform{Min: lo, Max: hi, Src: rng}
	data := raw.Data()
	for i := range data {
		data[i] = dist.Rand()
	}
	return New(raw, b)
}

// Bernoulli draws a {0,1} tensor where element i is 1 with probability
// probs[i]. Probabilities are clamped to [0,1].
func Bernoulli[B Backend](probs *RawTensor, rng *rand.Rand, b B) *Tensor[B] {
	raw := MustNewRaw(probs.Shape(), b.Device())
	out := raw.Data()
	for i, p := range probs.Data() {
		p = min(max(p, 0), 1)
		out[i] = distuv.Bernoulli{P: p, Src: rng}.Rand()
	}
	return New(raw, b)
}

// FillNormal overwrites dst with draws from N(mu, sigma²).
func FillNormal(dst []float64, mu, sigma float64, rng *rand.Rand) {
	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: rng}
	for i := range dst {
		dst[i] = dist.Rand()
	}
}
