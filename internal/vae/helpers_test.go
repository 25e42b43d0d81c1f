package vae_test

import (
	"github.com/born-ml/vae/internal/nn"
	"github.com/born-ml/vae/internal/vae"
)

func snapshot(net *vae.Network) map[string][]float64 {
	out := make(map[string][]float64)
	for _, p := range net.Parameters() {
		out[p.Name()] = append([]float64(nil), p.Tensor().Data()...)
	}
	return out
}

func countElements(params []*nn.Parameter[vae.Backend]) int {
	return nn.CountElements(params)
}
