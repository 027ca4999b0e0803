// Package tokenizer implements XLM-RoBERTa compatible SentencePiece Unigram
// tokenization without cgo or generated protobuf code.
package tokenizer

import (
	"fmt"
	"unicode/utf8"
)

// unkPenalty is subtracted from the lowest piece score to score <unk>,
// matching sentencepiece's kUnkPenalty.
const unkPenalty = 10.0

// Tokenizer implements XLM-RoBERTa compatible SentencePiece Unigram tokenization.
//
// Note: Token IDs are remapped from SentencePiece indices to match HuggingFace
// XLM-RoBERTa convention:
//   - HF[0] = <s>   (SP[1])
//   - HF[1] = <pad> (not in SentencePiece)
//   - HF[2] = </s>  (SP[2])
//   - HF[3] = <unk> (SP[0])
//   - HF[n+1] = SP[n] for n >= 3 (normal tokens shifted by 1)
type Tokenizer struct {
	pieces    map[string]int32   // token string -> SentencePiece index
	scores    map[string]float32 // matchable pieces only
	idToPiece []string
	unkScore  float32

	// HuggingFace-compatible token IDs
	bosID int32
	padID int32
	eosID int32
	unkID int32

	maxTokenLen int // in runes
}

// TokenInfo represents a token and its rune span in the normalized text.
type TokenInfo struct {
	ID    int32
	Text  string
	Start int
	End   int
}

// New loads a tokenizer from a SentencePiece .model file.
func New(modelPath string) (*Tokenizer, error) {
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}
	return FromModel(model)
}

// FromModel builds a tokenizer from an already parsed model.
func FromModel(model *Model) (*Tokenizer, error) {
	if model.ModelType != ModelUnigram {
		return nil, fmt.Errorf("unsupported model type %d (want unigram)", model.ModelType)
	}

	t := &Tokenizer{
		pieces:    make(map[string]int32, len(model.Pieces)),
		scores:    make(map[string]float32, len(model.Pieces)),
		idToPiece: make([]string, len(model.Pieces)),
		bosID:     0, // <s>
		padID:     1, // <pad>
		eosID:     2, // </s>
		unkID:     3, // <unk>
	}

	var minScore float32
	for i, piece := range model.Pieces {
		t.pieces[piece.Piece] = int32(i)
		t.idToPiece[i] = piece.Piece

		// Control and unknown pieces never match raw text.
		if piece.Type != PieceNormal && piece.Type != PieceUserDefined {
			continue
		}
		t.scores[piece.Piece] = piece.Score
		if piece.Score < minScore {
			minScore = piece.Score
		}
		if n := utf8.RuneCountInString(piece.Piece); n > t.maxTokenLen {
			t.maxTokenLen = n
		}
	}
	t.unkScore = minScore - unkPenalty

	return t, nil
}

// spIndexToHFID converts a SentencePiece index to a HuggingFace XLM-RoBERTa token ID.
func (t *Tokenizer) spIndexToHFID(spIndex int32) int32 {
	switch spIndex {
	case 0: // <unk>
		return t.unkID
	case 1: // <s>
		return t.bosID
	case 2: // </s>
		return t.eosID
	default: // normal tokens: shift by 1
		return spIndex + 1
	}
}

// Close releases tokenizer resources.
func (t *Tokenizer) Close() error {
	return nil
}

// VocabSize returns the vocabulary size (HuggingFace XLM-RoBERTa compatible: 250002).
// This is SentencePiece vocab size + 2 (for the inserted <pad> token and the ID shift).
func (t *Tokenizer) VocabSize() int {
	return len(t.idToPiece) + 2
}

// BOSID returns the beginning-of-sentence token ID.
func (t *Tokenizer) BOSID() int32 { return t.bosID }

// PadID returns the padding token ID.
func (t *Tokenizer) PadID() int32 { return t.padID }

// EOSID returns the end-of-sentence token ID.
func (t *Tokenizer) EOSID() int32 { return t.eosID }

// UnkID returns the unknown token ID.
func (t *Tokenizer) UnkID() int32 { return t.unkID }

// IsSpecial reports whether id is one of <s>, <pad> or </s>.
func (t *Tokenizer) IsSpecial(id int32) bool {
	return id == t.bosID || id == t.padID || id == t.eosID
}
