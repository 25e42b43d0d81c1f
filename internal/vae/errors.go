package vae

import "errors"

// Sentinel errors returned by model construction and model operations.
var (
	// ErrInvalidConfig reports a configuration with a non-positive
	// dimension, learning rate or sample count.
	ErrInvalidConfig = errors.New("invalid VAE config")

	// ErrUnsupportedDecoder reports a decoder distribution other than
	// "gaussian" or "bernoulli".
	ErrUnsupportedDecoder = errors.New("unsupported decoder distribution")

	// ErrShapeMismatch reports a batch or latent matrix whose width does not
	// match the model.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrCheckpointMismatch reports a checkpoint whose tensor names or shapes
	// differ from the model parameters.
	ErrCheckpointMismatch = errors.New("checkpoint does not match model")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("model is closed")
)
