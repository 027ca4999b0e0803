// Package corpus loads extracted AIHub JSON documents and writes sentence
// lists.
package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jamesainslie/go-layertune/internal/diag"
)

// Document is a JSON document decoded without a schema.
type Document = any

// Record is one entry of an evaluation document's data array.
type Record struct {
	SourceSentence string  `json:"source_sentence"`
	HT             string  `json:"ht"`
	MT             string  `json:"mt"`
	ScoreDAFinal   float64 `json:"score_da_final"`
}

// EvaluationDocument is the known shape of AIHub evaluation files.
type EvaluationDocument struct {
	Data []Record `json:"data"`
}

// sourceDocument distinguishes a missing source_sentence from an empty one.
type sourceDocument struct {
	Data []struct {
		SourceSentence *string `json:"source_sentence"`
	} `json:"data"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeFile reads a JSON file into v, ignoring a leading UTF-8 BOM.
func DecodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Loader walks extraction directories for JSON files.
type Loader struct {
	Logger *slog.Logger
}

// NewLoader returns a Loader logging to logger (slog.Default() if nil).
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{Logger: logger}
}

// LoadDocuments decodes every .json file under dir, recursively, in lexical
// walk order. Files that fail to decode are returned as failures and skipped.
func (l *Loader) LoadDocuments(dir string) ([]Document, []diag.Failure) {
	var docs []Document
	failures := l.walkJSON(dir, func(path string) error {
		var doc Document
		if err := DecodeFile(path, &doc); err != nil {
			return err
		}
		docs = append(docs, doc)
		l.Logger.Debug("loaded json", "path", path)
		return nil
	})
	return docs, failures
}

// CollectSourceSentences returns every source_sentence found in the data
// arrays of the .json files under dir, in file then record order.
// Duplicates are kept; records without the field contribute nothing.
func (l *Loader) CollectSourceSentences(dir string) ([]string, []diag.Failure) {
	var sentences []string
	failures := l.walkJSON(dir, func(path string) error {
		var doc sourceDocument
		if err := DecodeFile(path, &doc); err != nil {
			return err
		}
		for _, rec := range doc.Data {
			if rec.SourceSentence != nil {
				sentences = append(sentences, *rec.SourceSentence)
			}
		}
		return nil
	})
	return sentences, failures
}

// walkJSON calls fn for each .json file under dir. A missing dir is logged
// and treated as empty.
func (l *Loader) walkJSON(dir string, fn func(path string) error) []diag.Failure {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Logger.Warn("extraction directory not found", "path", dir)
			return nil
		}
		return []diag.Failure{{Path: dir, Err: err}}
	}

	var failures []diag.Failure
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			failures = append(failures, diag.Failure{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if err := fn(path); err != nil {
			failures = append(failures, diag.Failure{Path: path, Err: err})
		}
		return nil
	})
	if err != nil {
		failures = append(failures, diag.Failure{Path: dir, Err: err})
	}
	return failures
}
