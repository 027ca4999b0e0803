// Package tune sweeps every hidden layer of an embedding model and picks the
// layer whose scores correlate best with human judgements.
package tune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jamesainslie/go-layertune/internal/dataset"
)

// Scorer produces per-layer F scores for candidate/reference pairs.
type Scorer interface {
	// Score returns F scores indexed [layer][sentence].
	Score(ctx context.Context, cands, refs []string, batchSize int) ([][]float64, error)
	ComputeIDF(refs []string) error
	IDF() bool
	MaxLength() int
	Close() error
}

// ScorerFactory builds a scorer for model with every layer exposed.
type ScorerFactory func(model string, idf bool) (Scorer, error)

// TripleLoader returns the evaluation triple for a language pair.
type TripleLoader interface {
	Load(pair string) (dataset.Triple, error)
}

// Result is the outcome of one model's sweep.
type Result struct {
	Model     string
	BestLayer int
	BestCorr  float64
	MaxLength int
	IDF       bool
	Table     *Table
	Mismatch  *LayerMismatchError
}

// Sweeper runs the layer sweep for one or more models.
type Sweeper struct {
	Factory   ScorerFactory
	Loader    TripleLoader
	Pairs     []string
	BatchSize int
	IDF       bool
	Logger    *slog.Logger

	// Reporter and TableDir are used by RunAll. Either may be empty.
	Reporter *Reporter
	TableDir string
}

func (s *Sweeper) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Run sweeps a single model. Any pair failing to load or score aborts the
// model.
func (s *Sweeper) Run(ctx context.Context, model string) (res Result, err error) {
	if len(s.Pairs) == 0 {
		return Result{}, errors.New("no language pairs")
	}
	log := s.logger().With("model", model)

	scorer, err := s.Factory(model, s.IDF)
	if err != nil {
		return Result{}, fmt.Errorf("%s: create scorer: %w", model, err)
	}
	defer func() {
		err = errors.Join(err, scorer.Close())
	}()

	table := NewTable(model)
	maxLength := scorer.MaxLength()

	for _, pair := range s.Pairs {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		log.Info("scoring", "pair", pair)

		if err := s.sweepPair(ctx, scorer, table, pair); err != nil {
			return Result{}, fmt.Errorf("%s: %s: %w", model, pair, err)
		}
	}

	res = Result{
		Model:     model,
		MaxLength: maxLength,
		IDF:       s.IDF,
		Table:     table,
	}

	avg, err := table.Average(s.Pairs)
	if err != nil {
		if !errors.As(err, &res.Mismatch) {
			return Result{}, err
		}
		log.Warn("layer counts differ, averaging common layers",
			"pair", res.Mismatch.Pair, "want", res.Mismatch.Want, "got", res.Mismatch.Got)
	}
	for layer, corr := range avg {
		log.Debug("layer average", "layer", layer, "corr", corr)
	}

	res.BestLayer, res.BestCorr = BestLayer(avg)
	log.Info("best layer", "layer", res.BestLayer, "corr", res.BestCorr)
	return res, nil
}

func (s *Sweeper) sweepPair(ctx context.Context, scorer Scorer, table *Table, pair string) error {
	triple, err := s.Loader.Load(pair)
	if err != nil {
		return err
	}
	if err := triple.Validate(); err != nil {
		return err
	}

	if scorer.IDF() {
		if err := scorer.ComputeIDF(triple.References); err != nil {
			return fmt.Errorf("compute idf: %w", err)
		}
	}

	layers, err := scorer.Score(ctx, triple.Hypotheses, triple.References, s.BatchSize)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	if len(layers) == 0 {
		return errors.New("scorer returned no layers")
	}

	for layer, scores := range layers {
		if len(scores) != triple.Len() {
			return fmt.Errorf("layer %d: %d scores for %d sentences", layer, len(scores), triple.Len())
		}
		corr := Pearson(scores, triple.Gold)
		table.Set(pair, layer, corr)
		s.logger().Debug("correlation", "pair", pair, "layer", layer, "corr", corr)
	}
	return nil
}

// RunAll sweeps models in order. A failed model is logged and skipped; the
// errors of all failed models are joined and returned after the last one.
func (s *Sweeper) RunAll(ctx context.Context, models []string) ([]Result, error) {
	log := s.logger()
	var (
		results []Result
		errs    []error
	)

	for _, model := range models {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res, err := s.Run(ctx, model)
		if err != nil {
			log.Error("model failed", "model", model, "err", err)
			errs = append(errs, err)
			continue
		}

		if s.Reporter != nil {
			if err := s.Reporter.Append(res); err != nil {
				log.Error("write report", "model", model, "err", err)
				errs = append(errs, err)
			}
		}
		if s.TableDir != "" {
			if err := writeTable(s.TableDir, res); err != nil {
				log.Error("write table", "model", model, "err", err)
				errs = append(errs, err)
			}
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

func writeTable(dir string, res Result) (err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(TablePath(dir, res.Model))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return res.Table.WriteCSV(f)
}
