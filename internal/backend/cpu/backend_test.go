package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/vae/internal/parallel"
	"github.com/born-ml/vae/internal/tensor"
	"gonum.org/v1/gonum/floats"
)

// Helper to create test backend.
func newTestBackend() *CPUBackend {
	return New()
}

func mustRaw(t *testing.T, data []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromData(data, shape, tensor.CPU)
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	return r
}

func checkTensor(t *testing.T, got *tensor.RawTensor, shape tensor.Shape, want []float64) {
	t.Helper()
	if !got.Shape().Equal(shape) {
		t.Fatalf("Expected shape %v, got %v", shape, got.Shape())
	}
	if !floats.EqualApprox(got.Data(), want, 1e-12) {
		t.Errorf("Expected %v, got %v", want, got.Data())
	}
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

func TestCPUBackend_Binary(t *testing.T) {
	backend := newTestBackend()

	t.Run("SameShape", func(t *testing.T) {
		a := mustRaw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		b := mustRaw(t, []float64{10, 11, 12, 13, 14, 15}, tensor.Shape{2, 3})

		checkTensor(t, backend.Add(a, b), tensor.Shape{2, 3}, []float64{11, 13, 15, 17, 19, 21})
		checkTensor(t, backend.Sub(b, a), tensor.Shape{2, 3}, []float64{9, 9, 9, 9, 9, 9})
		checkTensor(t, backend.Mul(a, b), tensor.Shape{2, 3}, []float64{10, 22, 36, 52, 70, 90})
		checkTensor(t, backend.Div(b, a), tensor.Shape{2, 3}, []float64{10, 5.5, 4, 13.0 / 4, 14.0 / 5, 2.5})

		// Inputs untouched
		checkTensor(t, a, tensor.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	})

	t.Run("BroadcastRow", func(t *testing.T) {
		a := mustRaw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		bias := mustRaw(t, []float64{10, 20, 30}, tensor.Shape{3})
		checkTensor(t, backend.Add(a, bias), tensor.Shape{2, 3}, []float64{11, 22, 33, 14, 25, 36})
	})

	t.Run("BroadcastColumn", func(t *testing.T) {
		a := mustRaw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		col := mustRaw(t, []float64{2, 3}, tensor.Shape{2, 1})
		checkTensor(t, backend.Mul(a, col), tensor.Shape{2, 3}, []float64{2, 4, 6, 12, 15, 18})
	})

	t.Run("Broadcast3D", func(t *testing.T) {
		// [2,1,2] - [3,2] → [2,3,2]
		a := mustRaw(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 1, 2})
		b := mustRaw(t, []float64{0, 0, 1, 1, 2, 2}, tensor.Shape{3, 2})
		checkTensor(t, backend.Sub(a, b), tensor.Shape{2, 3, 2},
			[]float64{1, 2, 0, 1, -1, 0, 3, 4, 2, 3, 1, 2})
	})

	t.Run("Incompatible", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("Expected panic for incompatible shapes")
			}
		}()
		backend.Add(mustRaw(t, []float64{1, 2, 3}, tensor.Shape{3}), mustRaw(t, []float64{1, 2}, tensor.Shape{2}))
	})
}

func TestCPUBackend_Parallel(t *testing.T) {
	seq := NewWithConfig(parallel.Config{Enabled: false})
	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16})

	n := 1000
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = float64(i) * 0.01
		b[i] = float64(n-i) * 0.02
	}
	ra := mustRaw(t, a, tensor.Shape{10, 100})
	rb := mustRaw(t, b, tensor.Shape{10, 100})

	if !floats.Equal(seq.Mul(ra, rb).Data(), par.Mul(ra, rb).Data()) {
		t.Error("parallel Mul differs from sequential")
	}
	if !floats.Equal(seq.Softplus(ra).Data(), par.Softplus(ra).Data()) {
		t.Error("parallel Softplus differs from sequential")
	}
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := newTestBackend()

	a := mustRaw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := mustRaw(t, []float64{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	checkTensor(t, backend.MatMul(a, b), tensor.Shape{2, 2}, []float64{58, 64, 139, 154})

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for mismatched inner dimensions")
		}
	}()
	backend.MatMul(a, a)
}

func TestCPUBackend_Math(t *testing.T) {
	backend := newTestBackend()
	x := mustRaw(t, []float64{-800, -1, 0, 1, 800}, tensor.Shape{5})

	sp := backend.Softplus(x).Data()
	want := []float64{0, math.Log1p(math.Exp(-1)), math.Ln2, 1 + math.Log1p(math.Exp(-1)), 800}
	if !floats.EqualApprox(sp, want, 1e-12) {
		t.Errorf("softplus: expected %v, got %v", want, sp)
	}

	sg := backend.Sigmoid(x).Data()
	if sg[0] != 0 || sg[4] != 1 || sg[2] != 0.5 {
		t.Errorf("sigmoid: unexpected extremes %v", sg)
	}
	for _, v := range sg {
		if math.IsNaN(v) || v < 0 || v > 1 {
			t.Errorf("sigmoid: value %v outside [0,1]", v)
		}
	}

	checkTensor(t, backend.Exp(mustRaw(t, []float64{0, 1}, tensor.Shape{2})), tensor.Shape{2}, []float64{1, math.E})
	checkTensor(t, backend.Log(mustRaw(t, []float64{1, math.E}, tensor.Shape{2})), tensor.Shape{2}, []float64{0, 1})
	checkTensor(t, backend.AddScalar(mustRaw(t, []float64{1, 2}, tensor.Shape{2}), 0.5), tensor.Shape{2}, []float64{1.5, 2.5})
	checkTensor(t, backend.MulScalar(mustRaw(t, []float64{1, 2}, tensor.Shape{2}), -2), tensor.Shape{2}, []float64{-2, -4})

	if !math.IsInf(backend.Log(mustRaw(t, []float64{0}, tensor.Shape{1})).Data()[0], -1) {
		t.Error("log(0) should be -Inf")
	}
}

func TestCPUBackend_Reduce(t *testing.T) {
	backend := newTestBackend()
	x := mustRaw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	checkTensor(t, backend.SumDim(x, 1, false), tensor.Shape{2}, []float64{6, 15})
	checkTensor(t, backend.SumDim(x, -1, true), tensor.Shape{2, 1}, []float64{6, 15})
	checkTensor(t, backend.SumDim(x, 0, false), tensor.Shape{3}, []float64{5, 7, 9})
	checkTensor(t, backend.MeanDim(x, 0, true), tensor.Shape{1, 3}, []float64{2.5, 3.5, 4.5})
	checkTensor(t, backend.Sum(x), tensor.Shape{}, []float64{21})
	checkTensor(t, backend.Mean(x), tensor.Shape{}, []float64{3.5})

	v := mustRaw(t, []float64{2, 4}, tensor.Shape{2})
	checkTensor(t, backend.MeanDim(v, 0, false), tensor.Shape{}, []float64{3})

	// Middle dimension of a 3-D tensor
	y := mustRaw(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2})
	checkTensor(t, backend.SumDim(y, 1, false), tensor.Shape{2, 2}, []float64{4, 6, 12, 14})
}

func TestCPUBackend_Shape(t *testing.T) {
	backend := newTestBackend()
	x := mustRaw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	checkTensor(t, backend.Transpose(x), tensor.Shape{3, 2}, []float64{1, 4, 2, 5, 3, 6})
	checkTensor(t, backend.Reshape(x, tensor.Shape{3, 2}), tensor.Shape{3, 2}, []float64{1, 2, 3, 4, 5, 6})

	row := mustRaw(t, []float64{1, 2, 3}, tensor.Shape{1, 3})
	checkTensor(t, backend.BroadcastTo(row, tensor.Shape{2, 3}), tensor.Shape{2, 3}, []float64{1, 2, 3, 1, 2, 3})

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for invalid reshape")
		}
	}()
	backend.Reshape(x, tensor.Shape{4, 2})
}
