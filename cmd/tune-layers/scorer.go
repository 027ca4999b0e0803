package main

import (
	"context"
	"log/slog"
	"path/filepath"

	layertune "github.com/jamesainslie/go-layertune"
	"github.com/jamesainslie/go-layertune/internal/tune"
)

// maxLayers caps the hidden layers exposed per model.
const maxLayers = 100

// fScorer exposes the F channel of a layertune.Scorer as a tune.Scorer.
type fScorer struct {
	*layertune.Scorer
}

func (s fScorer) Score(ctx context.Context, cands, refs []string, batchSize int) ([][]float64, error) {
	scores, err := s.Scorer.Score(ctx, cands, refs, batchSize)
	if err != nil {
		return nil, err
	}
	return scores.Channel(layertune.F1), nil
}

func modelFactory(modelsDir string, poolSize int, logger *slog.Logger) tune.ScorerFactory {
	return func(model string, idf bool) (tune.Scorer, error) {
		sc, err := layertune.New(filepath.Join(modelsDir, model),
			layertune.WithNumLayers(maxLayers),
			layertune.WithIDF(idf),
			layertune.WithPoolSize(poolSize),
			layertune.WithLogger(logger.With("model", model)),
		)
		if err != nil {
			return nil, err
		}
		return fScorer{sc}, nil
	}
}
