package tensor

// Backend defines the interface that all compute backends must implement.
//
// Backends never modify their inputs: every operation returns a freshly
// allocated RawTensor. Shape errors are programmer errors and panic.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul multiplies two 2-D tensors: [m,k] @ [k,n] → [m,n].
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor) *RawTensor
	BroadcastTo(t *RawTensor, shape Shape) *RawTensor

	// Scalar operations.
	AddScalar(t *RawTensor, s float64) *RawTensor
	MulScalar(t *RawTensor, s float64) *RawTensor

	// Element-wise math.
	Exp(t *RawTensor) *RawTensor
	Log(t *RawTensor) *RawTensor
	Softplus(t *RawTensor) *RawTensor
	Sigmoid(t *RawTensor) *RawTensor

	// Reductions. A reduced dimension is dropped unless keepDim is set;
	// reducing a 1-D tensor without keepDim yields a scalar (shape []).
	SumDim(t *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(t *RawTensor, dim int, keepDim bool) *RawTensor
	Sum(t *RawTensor) *RawTensor
	Mean(t *RawTensor) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
