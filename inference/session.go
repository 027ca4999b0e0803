// Package inference provides ONNX Runtime integration for multi-layer
// encoder inference.
package inference

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// SetLibraryPath points the runtime at a specific onnxruntime shared library.
// It has no effect once the environment is initialized.
func SetLibraryPath(path string) {
	if path != "" {
		ort.SetSharedLibraryPath(path)
	}
}

// initORT initializes ONNX Runtime environment once.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// HiddenStates is one layer's output for a batch, laid out [batch, seq, hidden].
type HiddenStates struct {
	Data   []float32
	Batch  int
	SeqLen int
	Hidden int
}

// Vector returns the embedding of token pos in batch row b.
func (h HiddenStates) Vector(b, pos int) []float32 {
	off := (b*h.SeqLen + pos) * h.Hidden
	return h.Data[off : off+h.Hidden]
}

// Session wraps an ONNX Runtime session whose outputs are per-layer hidden states.
type Session struct {
	session *ort.DynamicAdvancedSession
	layers  []string
	mu      sync.Mutex
	closed  bool
}

// NewSession creates a session from a model file, binding the given
// hidden-state outputs in layer order.
func NewSession(modelPath string, layers []string) (*Session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}
	if len(layers) == 0 {
		return nil, ErrNoLayerOutputs
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }()

	inputNames := []string{"input_ids", "attention_mask"}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		layers,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session, layers: layers}, nil
}

// NumLayers returns how many hidden-state outputs the session produces.
func (s *Session) NumLayers() int {
	return len(s.layers)
}

// Infer runs one padded batch. inputIDs and attentionMask are row-major
// [batch, seqLen]. The result has one entry per layer.
func (s *Session) Infer(ctx context.Context, inputIDs, attentionMask []int64, batch, seqLen int) ([]HiddenStates, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(inputIDs) != batch*seqLen || len(attentionMask) != batch*seqLen {
		return nil, fmt.Errorf("input shape mismatch: %d ids, %d mask, want %d", len(inputIDs), len(attentionMask), batch*seqLen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}

	shape := ort.NewShape(int64(batch), int64(seqLen))

	inputIDsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("creating input_ids tensor: %w", err)
	}
	defer func() { _ = inputIDsTensor.Destroy() }()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("creating attention_mask tensor: %w", err)
	}
	defer func() { _ = attentionMaskTensor.Destroy() }()

	inputs := []ort.Value{inputIDsTensor, attentionMaskTensor}
	// nil entries are allocated by Run
	outputs := make([]ort.Value, len(s.layers))

	if err := s.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				_ = o.Destroy()
			}
		}
	}()

	states := make([]HiddenStates, len(outputs))
	for i, o := range outputs {
		if o == nil {
			return nil, fmt.Errorf("no output produced for %s", s.layers[i])
		}
		tensor, ok := o.(*ort.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("unexpected tensor type for %s", s.layers[i])
		}

		dims := tensor.GetShape()
		if len(dims) != 3 || dims[0] != int64(batch) || dims[1] != int64(seqLen) {
			return nil, fmt.Errorf("unexpected shape %v for %s", dims, s.layers[i])
		}

		// Tensor memory is freed on Destroy, so copy out.
		data := make([]float32, len(tensor.GetData()))
		copy(data, tensor.GetData())

		states[i] = HiddenStates{
			Data:   data,
			Batch:  batch,
			SeqLen: seqLen,
			Hidden: int(dims[2]),
		}
	}

	return states, nil
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
