package autodiff_test

import (
	"testing"

	"github.com/born-ml/vae/internal/autodiff"
	"github.com/born-ml/vae/internal/backend/cpu"
	"github.com/born-ml/vae/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutodiffBackend_Name(t *testing.T) {
	backend := autodiff.New(cpu.New())
	assert.Equal(t, "Autodiff(CPU)", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
	assert.NotNil(t, backend.Inner())
}

func TestBackward_Square(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x, err := tensor.FromSlice([]float64{2, -3}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	y := x.Mul(x).Sum()

	grads := autodiff.Backward(y, backend)
	assert.Equal(t, []float64{4, -6}, grads[x.Raw()].Data())
}

func TestBackward_DetachBlocksGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x, err := tensor.FromSlice([]float64{2, 5}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	// y = x * stop(x): dy/dx = stop(x) = x, not 2x.
	y := x.Mul(x.Detach()).Sum()
	grads := autodiff.Backward(y, backend)
	assert.Equal(t, []float64{2, 5}, grads[x.Raw()].Data())
}

func TestBackward_UnusedTensorHasNoGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x := tensor.Ones(tensor.Shape{2}, backend)
	unused := tensor.Ones(tensor.Shape{2}, backend)
	other := unused.MulScalar(3).Sum()
	y := x.MulScalar(2).Sum()

	grads := autodiff.Backward(y, backend)
	assert.Equal(t, []float64{2, 2}, grads[x.Raw()].Data())
	_, ok := grads[unused.Raw()]
	assert.False(t, ok)
	_, ok = grads[other.Raw()]
	assert.False(t, ok)
}

func TestBackward_Accumulates(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2}, backend)
	y := x.Add(x).Add(x.MulScalar(3)).Sum() // 5x

	grads := autodiff.Backward(y, backend)
	assert.Equal(t, []float64{5, 5}, grads[x.Raw()].Data())
}

func TestGradientTape_Recording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()

	x := tensor.Ones(tensor.Shape{2}, backend)
	x.Exp()
	assert.Equal(t, 0, tape.NumOps(), "ops recorded while not recording")

	tape.StartRecording()
	x.Exp()
	assert.Equal(t, 1, tape.NumOps())

	restore := tape.Pause()
	x.Exp()
	assert.False(t, tape.IsRecording())
	restore()
	assert.True(t, tape.IsRecording())
	assert.Equal(t, 1, tape.NumOps())

	tape.Clear()
	assert.Equal(t, 0, tape.NumOps())
	assert.True(t, tape.IsRecording())

	tape.StopRecording()
	assert.False(t, tape.IsRecording())
}

func TestBackward_PanicsOnEmptyTape(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := tensor.Ones(tensor.Shape{1}, backend)
	assert.Panics(t, func() { autodiff.Backward(x, backend) })
}

func TestBackward_GradientOpsNotRecorded(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float64{0.5}, tensor.Shape{1}, backend)
	y := x.Softplus().Sum()
	before := backend.Tape().NumOps()

	autodiff.Backward(y, backend)
	assert.Equal(t, before, backend.Tape().NumOps())
	assert.True(t, backend.Tape().IsRecording())
}
