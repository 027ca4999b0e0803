package layertune

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates the model file does not exist.
	ErrModelNotFound = errors.New("layertune: model file not found")

	// ErrInvalidModel indicates the model file exists but cannot be used,
	// for example because it exposes no hidden-state outputs.
	ErrInvalidModel = errors.New("layertune: invalid model format")

	// ErrTokenizerFailed indicates tokenizer initialization failed.
	ErrTokenizerFailed = errors.New("layertune: tokenizer initialization failed")

	// ErrLengthMismatch indicates candidates and references differ in length.
	ErrLengthMismatch = errors.New("layertune: candidates and references differ in length")
)
