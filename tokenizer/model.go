package tokenizer

import (
	"errors"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// PieceType mirrors ModelProto.SentencePiece.Type.
type PieceType int32

// SentencePiece piece types.
const (
	PieceNormal      PieceType = 1
	PieceUnknown     PieceType = 2
	PieceControl     PieceType = 3
	PieceUserDefined PieceType = 4
	PieceUnused      PieceType = 5
	PieceByte        PieceType = 6
)

// ModelType mirrors TrainerSpec.ModelType.
type ModelType int32

// SentencePiece model types.
const (
	ModelUnigram ModelType = 1
	ModelBPE     ModelType = 2
	ModelWord    ModelType = 3
	ModelChar    ModelType = 4
)

// Field numbers from sentencepiece_model.proto.
const (
	fieldModelPieces      protowire.Number = 1
	fieldModelTrainerSpec protowire.Number = 2

	fieldPiecePiece protowire.Number = 1
	fieldPieceScore protowire.Number = 2
	fieldPieceType  protowire.Number = 3

	fieldTrainerModelType protowire.Number = 3
)

// Piece represents a vocabulary piece from the model.
type Piece struct {
	Piece string
	Score float32
	Type  PieceType
}

// Model represents a loaded SentencePiece model.
type Model struct {
	Pieces    []Piece
	ModelType ModelType
}

// LoadModel loads a SentencePiece model from a .model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return ParseModel(data)
}

// ParseModel decodes a serialized ModelProto. Only the pieces and the
// trainer's model type are kept; every other field is skipped.
func ParseModel(data []byte) (*Model, error) {
	m := &Model{ModelType: ModelUnigram}

	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) error {
		switch {
		case num == fieldModelPieces && typ == protowire.BytesType:
			p, err := parsePiece(b)
			if err != nil {
				return fmt.Errorf("piece %d: %w", len(m.Pieces), err)
			}
			m.Pieces = append(m.Pieces, p)
		case num == fieldModelTrainerSpec && typ == protowire.BytesType:
			mt, err := parseModelType(b)
			if err != nil {
				return fmt.Errorf("trainer spec: %w", err)
			}
			m.ModelType = mt
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing protobuf: %w", err)
	}
	if len(m.Pieces) == 0 {
		return nil, errors.New("parsing protobuf: model has no pieces")
	}
	return m, nil
}

func parsePiece(data []byte) (Piece, error) {
	p := Piece{Type: PieceNormal}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) error {
		switch {
		case num == fieldPiecePiece && typ == protowire.BytesType:
			p.Piece = string(b)
		case num == fieldPieceScore && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			p.Score = math.Float32frombits(v)
		case num == fieldPieceType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			p.Type = PieceType(v)
		}
		return nil
	})
	return p, err
}

func parseModelType(data []byte) (ModelType, error) {
	mt := ModelUnigram
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) error {
		if num == fieldTrainerModelType && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			mt = ModelType(v)
		}
		return nil
	})
	return mt, err
}

// walkFields calls fn for every top-level field in data. For length-delimited
// fields b is the payload; for scalar fields b starts at the encoded value.
func walkFields(data []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		var payload []byte
		if typ == protowire.BytesType {
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			payload = b
			n = m
		} else {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			payload = data[:n]
		}

		if err := fn(num, typ, payload); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
