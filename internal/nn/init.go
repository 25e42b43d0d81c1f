package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer fills a weight matrix of shape [fanIn, fanOut].
type Initializer interface {
	Fill(data []float64, fanIn, fanOut int)
}

// FanMode selects which fan the variance-scaling initializer divides by.
type FanMode int

// Supported fan modes.
const (
	FanIn FanMode = iota
	FanOut
	FanAvg
)

// VarianceScaling draws weights from a normal distribution truncated at two
// standard deviations, with stddev = sqrt(1.3 * Factor / n) where n is
// chosen by Mode. The 1.3 corrects for the variance lost to truncation.
//
// With Factor 2 and FanIn this is He initialization for rectifier-like
// activations such as softplus.
type VarianceScaling struct {
	Factor float64
	Mode   FanMode
	Rng    *rand.Rand
}

// NewVarianceScaling returns the default variance-scaling initializer:
// factor 2.0, fan-in mode.
func NewVarianceScaling(rng *rand.Rand) *VarianceScaling {
	return &VarianceScaling{Factor: 2.0, Mode: FanIn, Rng: rng}
}

// Fill implements Initializer.
func (v *VarianceScaling) Fill(data []float64, fanIn, fanOut int) {
	var n float64
	switch v.Mode {
	case FanOut:
		n = float64(fanOut)
	case FanAvg:
		n = float64(fanIn+fanOut) / 2
	default:
		n = float64(fanIn)
	}
	std := math.Sqrt(1.3 * v.Factor / n)

	dist := distuv.Normal{Mu: 0, Sigma: std, Src: v.Rng}
	for i := range data {
		w := dist.Rand()
		for math.Abs(w) > 2*std {
			w = dist.Rand()
		}
		data[i] = w
	}
}

// Xavier (Glorot) uniform initialization.
//
// Initializes weights with values drawn from
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
type Xavier struct {
	Rng *rand.Rand
}

// Fill implements Initializer.
func (x *Xavier) Fill(data []float64, fanIn, fanOut int) {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	dist := distuv.Uniform{Min: -bound, Max: bound, Src: x.Rng}
	for i := range data {
		data[i] = dist.Rand()
	}
}
