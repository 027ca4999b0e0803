package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Setenv("LAYERTUNE_BASE_PATH", "")
	t.Setenv("LAYERTUNE_SPLITS", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "./008.다국어 번역 품질 평가 데이터/3.개방데이터/1.데이터", cfg.BasePath)
	assert.Equal(t, []string{"Validation"}, cfg.Splits)
	assert.Equal(t, "source_sentences.txt", cfg.SentencesFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "preprocess.yaml")
	content := `base_path: /data/aihub
splits: [Training, Validation]
sentences_file: sources.txt
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"base_path", cfg.BasePath, "/data/aihub"},
		{"splits", cfg.Splits, []string{"Training", "Validation"}},
		{"sentences_file", cfg.SentencesFile, "sources.txt"},
		{"log_level", cfg.LogLevel, "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestLoadPartialYAMLKeepsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "preprocess.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_path: /data\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.BasePath)
	assert.Equal(t, []string{"Validation"}, cfg.Splits)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LAYERTUNE_BASE_PATH", "/env/base")
	t.Setenv("LAYERTUNE_SPLITS", "Training, Validation,")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/base", cfg.BasePath)
	assert.Equal(t, []string{"Training", "Validation"}, cfg.Splits)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), os.ErrNotExist},
		{"bad yaml", write("bad.yaml", "splits: [unclosed"), nil},
		{"unknown split", write("split.yaml", "splits: [Test]"), ErrUnknownSplit},
		{"bad level", write("level.yaml", "log_level: loud"), nil},
		{"empty splits", write("empty.yaml", "splits: []"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLabelingDir(t *testing.T) {
	cfg := Config{BasePath: "/data"}
	assert.Equal(t, filepath.Join("/data", "Validation", "02.라벨링데이터"), cfg.LabelingDir(SplitValidation))
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}
