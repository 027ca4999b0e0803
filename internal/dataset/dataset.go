// Package dataset loads (hypothesis, reference, gold score) triples from the
// WMT16 DAseg release and from extracted AIHub evaluation files.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-layertune/internal/archive"
	"github.com/jamesainslie/go-layertune/internal/config"
	"github.com/jamesainslie/go-layertune/internal/corpus"
)

// WMT16SegDir is the DAseg directory relative to the WMT16 data root.
const WMT16SegDir = "wmt16-metrics-results/seg-level-results/DAseg-newstest2016"

var aihubPairs = map[string]bool{"enko": true, "jako": true, "zhko": true}

// Triple holds parallel hypotheses, references and gold scores.
// Adapters do not check that the three have equal length.
type Triple struct {
	Hypotheses []string
	References []string
	Gold       []float64
}

// Len returns the number of hypotheses.
func (t Triple) Len() int {
	return len(t.Hypotheses)
}

// Validate reports whether the three slices have equal length.
func (t Triple) Validate() error {
	if len(t.References) != len(t.Hypotheses) || len(t.Gold) != len(t.Hypotheses) {
		return fmt.Errorf("triple length mismatch: %d hypotheses, %d references, %d gold scores",
			len(t.Hypotheses), len(t.References), len(t.Gold))
	}
	return nil
}

// IsAIHubPair reports whether pair names an AIHub language pair.
func IsAIHubPair(pair string) bool {
	return aihubPairs[pair]
}

// LoadWMT16 reads the human, reference and mt-system files for pair.
func LoadWMT16(dataRoot, pair string) (Triple, error) {
	read := func(kind string) ([]string, error) {
		path := filepath.Join(dataRoot, WMT16SegDir, "DAseg-newstest2016."+kind+"."+pair)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("wmt16 %s: %w", pair, err)
		}
		return strings.Split(strings.TrimSpace(string(data)), "\n"), nil
	}

	human, err := read("human")
	if err != nil {
		return Triple{}, err
	}
	gold := make([]float64, len(human))
	for i, line := range human {
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			return Triple{}, fmt.Errorf("wmt16 %s: gold line %d: %w", pair, i+1, err)
		}
		gold[i] = v
	}

	refs, err := read("reference")
	if err != nil {
		return Triple{}, err
	}
	hyps, err := read("mt-system")
	if err != nil {
		return Triple{}, err
	}

	return Triple{Hypotheses: hyps, References: refs, Gold: gold}, nil
}

// AIHubDir returns the MTPE extraction directory for split under root.
func AIHubDir(root, split string) string {
	return filepath.Join(root, config.DatasetDir, split, config.LabelingDirName, archive.CategoryMTPE.Dir())
}

// LoadAIHub reads every <pair>*.json file directly under each split's
// extraction directory, in name order, appending score_da_final, ht and mt
// per record.
func LoadAIHub(root, pair string, splits []string) (Triple, error) {
	if err := config.ValidateSplits(splits); err != nil {
		return Triple{}, err
	}

	prefix := strings.ToLower(pair)
	var t Triple
	for _, split := range splits {
		dir := AIHubDir(root, split)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return Triple{}, fmt.Errorf("aihub %s: %w", pair, err)
		}

		var names []string
		for _, e := range entries {
			name := e.Name()
			if e.Type().IsRegular() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".json") {
				names = append(names, name)
			}
		}
		sort.Strings(names)

		for _, name := range names {
			var doc corpus.EvaluationDocument
			if err := corpus.DecodeFile(filepath.Join(dir, name), &doc); err != nil {
				return Triple{}, fmt.Errorf("aihub %s: %w", pair, err)
			}
			for _, rec := range doc.Data {
				t.Gold = append(t.Gold, rec.ScoreDAFinal)
				t.References = append(t.References, rec.HT)
				t.Hypotheses = append(t.Hypotheses, rec.MT)
			}
		}
	}
	return t, nil
}

// Loader dispatches a language pair to the matching adapter.
type Loader struct {
	DataRoot    string
	AIHubRoot   string
	AIHubSplits []string
}

// Load returns the triple for pair.
func (l Loader) Load(pair string) (Triple, error) {
	if IsAIHubPair(pair) {
		splits := l.AIHubSplits
		if len(splits) == 0 {
			splits = []string{config.SplitValidation}
		}
		return LoadAIHub(l.AIHubRoot, pair, splits)
	}
	return LoadWMT16(l.DataRoot, pair)
}
