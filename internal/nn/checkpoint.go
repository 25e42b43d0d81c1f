package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/vae/internal/serialization"
	"github.com/born-ml/vae/internal/tensor"
)

// ErrStateMismatch reports a checkpoint whose tensor names or shapes do not
// match the parameters being restored.
var ErrStateMismatch = errors.New("state dict does not match parameters")

// Save writes params to a .born file under their names.
//
// Example:
//
//	err := nn.Save("vae.born", model.Parameters(), "VAE", map[string]string{"latent_dim": "20"})
func Save[B tensor.Backend](path string, params []*Parameter[B], modelType string, metadata map[string]string) error {
	writer, err := serialization.NewBornWriter(path)
	if err != nil {
		return err
	}
	if err := writer.WriteStateDict(StateDict(params), modelType, metadata); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parameters: %w", err)
	}
	return writer.Close()
}

// Load restores params from a .born file and returns the file metadata.
//
// Every parameter must be present with the same shape, and the file may not
// hold extra tensors; otherwise ErrStateMismatch is returned and no
// parameter is modified.
func Load[B tensor.Backend](path string, params []*Parameter[B]) (map[string]string, error) {
	reader, err := serialization.NewBornReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	state, err := reader.ReadStateDict()
	if err != nil {
		return nil, err
	}
	if err := LoadStateDict(params, state); err != nil {
		return nil, err
	}
	return reader.Metadata(), nil
}

// LoadStateDict copies state into params after checking that names and
// shapes match exactly. On mismatch no parameter is modified.
func LoadStateDict[B tensor.Backend](params []*Parameter[B], state map[string]*tensor.RawTensor) error {
	if len(state) != len(params) {
		return fmt.Errorf("%w: checkpoint has %d tensors, model has %d parameters", ErrStateMismatch, len(state), len(params))
	}
	for _, p := range params {
		raw, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("%w: missing tensor %q", ErrStateMismatch, p.Name())
		}
		if !raw.Shape().Equal(p.Shape()) {
			return fmt.Errorf("%w: tensor %q has shape %v, parameter has %v", ErrStateMismatch, p.Name(), raw.Shape(), p.Shape())
		}
	}
	for _, p := range params {
		if err := p.Raw().CopyFrom(state[p.Name()]); err != nil {
			return err
		}
	}
	return nil
}
