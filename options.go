package layertune

import (
	"log/slog"
	"runtime"
)

// Option configures a Scorer.
type Option func(*config)

type config struct {
	numLayers     int
	idf           bool
	poolSize      int
	maxSeqLen     int
	modelFile     string
	tokenizerFile string
	logger        *slog.Logger
}

func defaultConfig() config {
	return config{
		numLayers:     100,
		poolSize:      runtime.NumCPU(),
		maxSeqLen:     512,
		modelFile:     "model.onnx",
		tokenizerFile: "sentencepiece.bpe.model",
		logger:        slog.Default(),
	}
}

// WithNumLayers caps how many hidden layers are scored (default: 100).
func WithNumLayers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.numLayers = n
		}
	}
}

// WithIDF enables inverse-document-frequency token weighting. Weights are
// fitted with ComputeIDF.
func WithIDF(enabled bool) Option {
	return func(c *config) {
		c.idf = enabled
	}
}

// WithPoolSize sets the ONNX session pool size (default: runtime.NumCPU()).
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithMaxSeqLen sets the model's maximum input length including <s> and
// </s> (default: 512).
func WithMaxSeqLen(n int) Option {
	return func(c *config) {
		if n > 2 {
			c.maxSeqLen = n
		}
	}
}

// WithModelFile overrides the ONNX file name inside the model directory.
func WithModelFile(name string) Option {
	return func(c *config) {
		if name != "" {
			c.modelFile = name
		}
	}
}

// WithTokenizerFile overrides the SentencePiece file name inside the model directory.
func WithTokenizerFile(name string) Option {
	return func(c *config) {
		if name != "" {
			c.tokenizerFile = name
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
