package inference

import "errors"

var (
	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("inference: pool is closed")

	// ErrNoLayerOutputs indicates the model exposes no hidden-state outputs.
	ErrNoLayerOutputs = errors.New("inference: model has no hidden-state outputs")
)
