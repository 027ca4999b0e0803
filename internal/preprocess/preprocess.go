// Package preprocess runs the AIHub preparation pipeline: extract archives,
// load the extracted documents and write their source sentences.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jamesainslie/go-layertune/internal/archive"
	"github.com/jamesainslie/go-layertune/internal/config"
	"github.com/jamesainslie/go-layertune/internal/corpus"
	"github.com/jamesainslie/go-layertune/internal/diag"
)

// SplitReport summarises one split.
type SplitReport struct {
	Split         string
	LabelingDir   string
	Extracted     map[archive.Category][]string
	Documents     int
	Sentences     int
	SentencesPath string
	Failures      []diag.Failure
}

// Err joins the split's per-file failures, or returns nil if there are none.
func (r SplitReport) Err() error {
	return diag.Join(r.Failures)
}

// Run processes every split in cfg. Per-file failures are logged and kept in
// the reports; only cancellation and sentence-file write errors are returned.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) ([]SplitReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	extractor := archive.NewExtractor(logger)
	loader := corpus.NewLoader(logger)

	var (
		reports []SplitReport
		errs    []error
	)
	for _, split := range cfg.Splits {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		rep, err := runSplit(ctx, cfg, split, extractor, loader, logger.With("split", split))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", split, err))
		}
		reports = append(reports, rep)
	}

	return reports, errors.Join(errs...)
}

func runSplit(ctx context.Context, cfg config.Config, split string, extractor *archive.Extractor, loader *corpus.Loader, log *slog.Logger) (SplitReport, error) {
	labelingDir := cfg.LabelingDir(split)
	rep := SplitReport{
		Split:         split,
		LabelingDir:   labelingDir,
		SentencesPath: filepath.Join(labelingDir, cfg.SentencesFile),
	}

	if _, err := os.Stat(labelingDir); errors.Is(err, fs.ErrNotExist) {
		log.Warn("labeling directory not found, skipping split", "path", labelingDir)
		return rep, nil
	}

	// ExtractAll logs its own failures.
	summary, failures := extractor.ExtractAll(ctx, labelingDir)
	rep.Extracted = summary.Extracted
	rep.Failures = append(rep.Failures, failures...)

	docs, failures := loader.LoadDocuments(filepath.Join(labelingDir, archive.CategoryMTPE.Dir()))
	diag.Log(log, "load json failed", failures)
	rep.Documents = len(docs)
	rep.Failures = append(rep.Failures, failures...)
	log.Info("loaded documents", "count", rep.Documents)

	var sentences []string
	for _, cat := range []archive.Category{archive.CategoryMTPE, archive.CategoryHT} {
		found, failures := loader.CollectSourceSentences(filepath.Join(labelingDir, cat.Dir()))
		diag.Log(log, "collect sentences failed", failures)
		rep.Failures = append(rep.Failures, failures...)
		sentences = append(sentences, found...)
	}
	rep.Sentences = len(sentences)

	if err := corpus.WriteSentences(rep.SentencesPath, sentences); err != nil {
		log.Error("write sentences failed", "path", rep.SentencesPath, "err", err)
		return rep, err
	}
	log.Info("wrote sentences", "path", rep.SentencesPath, "count", rep.Sentences)
	return rep, nil
}
