// Package config holds the AIHub dataset layout and the preprocess
// configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Directory names of the AIHub "multilingual translation quality" release.
const (
	DatasetDir      = "008.다국어 번역 품질 평가 데이터/3.개방데이터/1.데이터"
	LabelingDirName = "02.라벨링데이터"
)

// Dataset splits.
const (
	SplitTraining   = "Training"
	SplitValidation = "Validation"
)

// ErrUnknownSplit indicates a split name other than Training or Validation.
var ErrUnknownSplit = errors.New("config: unknown split")

// Config holds preprocess configuration.
type Config struct {
	BasePath      string   `yaml:"base_path"`
	Splits        []string `yaml:"splits"`
	SentencesFile string   `yaml:"sentences_file"`
	LogLevel      string   `yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BasePath:      "./" + DatasetDir,
		Splits:        []string{SplitValidation},
		SentencesFile: "source_sentences.txt",
		LogLevel:      "info",
	}
}

// Load loads configuration from a YAML file (if path is non-empty), then
// applies environment variable overrides. An empty path returns defaults +
// env overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if v := os.Getenv("LAYERTUNE_BASE_PATH"); v != "" {
		cfg.BasePath = v
	}
	if v := os.Getenv("LAYERTUNE_SPLITS"); v != "" {
		cfg.Splits = SplitList(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields and split names.
func (c Config) Validate() error {
	if c.BasePath == "" {
		return errors.New("config: base_path is required")
	}
	if c.SentencesFile == "" {
		return errors.New("config: sentences_file is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return ValidateSplits(c.Splits)
}

// LabelingDir returns <base>/<split>/02.라벨링데이터.
func (c Config) LabelingDir(split string) string {
	return filepath.Join(c.BasePath, split, LabelingDirName)
}

// ValidateSplits requires at least one split and only known split names.
func ValidateSplits(splits []string) error {
	if len(splits) == 0 {
		return errors.New("config: at least one split is required")
	}
	for _, s := range splits {
		if s != SplitTraining && s != SplitValidation {
			return fmt.Errorf("%w: %q", ErrUnknownSplit, s)
		}
	}
	return nil
}

// SplitList parses a comma-separated split list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log level %q", name)
	}
}
