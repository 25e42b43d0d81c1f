package cpu

import (
	"fmt"

	"github.com/born-ml/vae/internal/tensor"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// MatMul performs 2-D matrix multiplication: [m,k] @ [k,n] → [m,n].
//
// The product is computed by gonum's BLAS Dgemm over the row-major storage.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	m, k := aShape[0], aShape[1]
	k2, n := bShape[0], bShape[1]
	if k != k2 {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch %v @ %v", aShape, bShape))
	}

	result, err := tensor.NewRaw(tensor.Shape{m, n}, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: %v", err))
	}

	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
		general(a.Data(), m, k),
		general(b.Data(), k, n),
		0,
		general(result.Data(), m, n))

	return result
}

// general views row-major storage as a blas64.General.
func general(data []float64, rows, cols int) blas64.General {
	return blas64.General{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   data,
	}
}
