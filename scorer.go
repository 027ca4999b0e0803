package layertune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-layertune/inference"
	"github.com/jamesainslie/go-layertune/tokenizer"
)

// Channel selects one of the three per-layer score channels.
type Channel int

const (
	Precision Channel = iota
	Recall
	F1
)

// LayerScores holds per-layer scores indexed [layer][pair].
type LayerScores struct {
	P [][]float64
	R [][]float64
	F [][]float64
}

func newLayerScores(layers, pairs int) *LayerScores {
	alloc := func() [][]float64 {
		m := make([][]float64, layers)
		for i := range m {
			m[i] = make([]float64, pairs)
		}
		return m
	}
	return &LayerScores{P: alloc(), R: alloc(), F: alloc()}
}

// Channel returns the scores for one channel.
func (ls *LayerScores) Channel(c Channel) [][]float64 {
	switch c {
	case Precision:
		return ls.P
	case Recall:
		return ls.R
	default:
		return ls.F
	}
}

// NumLayers returns how many layers were scored.
func (ls *LayerScores) NumLayers() int {
	return len(ls.F)
}

// Scorer computes layer-wise similarity scores with an ONNX encoder.
// It is safe for concurrent use.
type Scorer struct {
	tokenizer *tokenizer.Tokenizer
	pool      *inference.Pool
	layers    []string
	maxLength int
	useIDF    bool
	logger    *slog.Logger

	mu  sync.RWMutex
	idf *idfTable
}

// New creates a Scorer from a model directory holding the ONNX encoder and
// its SentencePiece model.
func New(modelDir string, opts ...Option) (*Scorer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	modelPath := filepath.Join(modelDir, cfg.modelFile)
	tokenizerPath := filepath.Join(modelDir, cfg.tokenizerFile)

	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	tok, err := tokenizer.New(tokenizerPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTokenizerFailed, tokenizerPath)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenizerFailed, err)
	}

	layers, err := inference.LayerOutputs(modelPath, cfg.numLayers)
	if err != nil {
		_ = tok.Close()
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	pool, err := inference.NewPool(modelPath, layers, cfg.poolSize)
	if err != nil {
		_ = tok.Close()
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	cfg.logger.Debug("scorer ready", "model", modelPath, "layers", len(layers), "pool", pool.Size())

	return &Scorer{
		tokenizer: tok,
		pool:      pool,
		layers:    layers,
		maxLength: cfg.maxSeqLen - 2,
		useIDF:    cfg.idf,
		logger:    cfg.logger,
	}, nil
}

// IDF reports whether IDF weighting is enabled.
func (s *Scorer) IDF() bool {
	return s.useIDF
}

// MaxLength returns the maximum number of content tokens kept per sentence.
func (s *Scorer) MaxLength() int {
	return s.maxLength
}

// NumLayers returns how many hidden layers each Score call reports.
func (s *Scorer) NumLayers() int {
	return len(s.layers)
}

// ComputeIDF fits IDF weights on the reference sentences. The weights are
// used by later Score calls when IDF weighting is enabled.
func (s *Scorer) ComputeIDF(refs []string) error {
	if len(refs) == 0 {
		return errors.New("layertune: no references to fit idf on")
	}

	docs := make([][]int32, len(refs))
	for i, ref := range refs {
		docs[i] = s.tokenizer.EncodeForModel(ref, s.maxLength)
	}
	table := fitIDF(docs)

	s.mu.Lock()
	s.idf = table
	s.mu.Unlock()
	return nil
}

// Score returns precision, recall and F1 per layer for each (cand, ref)
// pair. batchSize sentences are embedded per ONNX run.
func (s *Scorer) Score(ctx context.Context, cands, refs []string, batchSize int) (*LayerScores, error) {
	if len(cands) != len(refs) {
		return nil, fmt.Errorf("%w: %d candidates, %d references", ErrLengthMismatch, len(cands), len(refs))
	}
	if batchSize <= 0 {
		batchSize = 64
	}

	s.mu.RLock()
	weights := s.idf
	s.mu.RUnlock()
	if !s.useIDF {
		weights = nil
	}

	scores := newLayerScores(len(s.layers), len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.pool.Size())

	for start := 0; start < len(cands); start += batchSize {
		end := min(start+batchSize, len(cands))
		g.Go(func() error {
			return s.scoreBatch(gctx, cands[start:end], refs[start:end], start, weights, scores)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// scoreBatch embeds one batch and writes its scores at offset. Each batch
// owns a disjoint index range, so writes need no locking.
func (s *Scorer) scoreBatch(ctx context.Context, cands, refs []string, offset int, weights *idfTable, out *LayerScores) error {
	session, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(session)

	candEmb, err := s.embed(ctx, session, cands, weights)
	if err != nil {
		return fmt.Errorf("embedding candidates: %w", err)
	}
	refEmb, err := s.embed(ctx, session, refs, weights)
	if err != nil {
		return fmt.Errorf("embedding references: %w", err)
	}

	for l := range s.layers {
		for i := range cands {
			p, r, f := greedyMatch(candEmb.vecs[l][i], refEmb.vecs[l][i], candEmb.weights[i], refEmb.weights[i])
			out.P[l][offset+i] = p
			out.R[l][offset+i] = r
			out.F[l][offset+i] = f
		}
	}
	return nil
}

// embedded holds unit-normalized token vectors [layer][row][token] and the
// matching token weights [row][token]. Special tokens are dropped.
type embedded struct {
	vecs    [][][][]float64
	weights [][]float64
}

func (s *Scorer) embed(ctx context.Context, session *inference.Session, texts []string, weights *idfTable) (*embedded, error) {
	ids := make([][]int32, len(texts))
	seqLen := 0
	for i, text := range texts {
		ids[i] = s.tokenizer.EncodeForModel(text, s.maxLength)
		seqLen = max(seqLen, len(ids[i]))
	}

	batch := len(texts)
	inputIDs := make([]int64, batch*seqLen)
	mask := make([]int64, batch*seqLen)
	for b, row := range ids {
		for pos := 0; pos < seqLen; pos++ {
			idx := b*seqLen + pos
			if pos < len(row) {
				inputIDs[idx] = int64(row[pos])
				mask[idx] = 1
			} else {
				inputIDs[idx] = int64(s.tokenizer.PadID())
			}
		}
	}

	states, err := session.Infer(ctx, inputIDs, mask, batch, seqLen)
	if err != nil {
		return nil, err
	}

	out := &embedded{
		vecs:    make([][][][]float64, len(states)),
		weights: make([][]float64, batch),
	}
	for b, row := range ids {
		for _, id := range row {
			if s.tokenizer.IsSpecial(id) {
				continue
			}
			out.weights[b] = append(out.weights[b], weights.weight(id))
		}
	}

	for l, h := range states {
		out.vecs[l] = make([][][]float64, batch)
		for b, row := range ids {
			for pos, id := range row {
				if s.tokenizer.IsSpecial(id) {
					continue
				}
				out.vecs[l][b] = append(out.vecs[l][b], unitVector(h.Vector(b, pos)))
			}
		}
	}

	return out, nil
}

// Close releases all resources.
func (s *Scorer) Close() error {
	var errs []error

	if s.pool != nil {
		if err := s.pool.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.tokenizer != nil {
		if err := s.tokenizer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
