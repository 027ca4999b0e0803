package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-layertune/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeWMT16(t *testing.T, root, pair, human, ref, mt string) {
	t.Helper()
	dir := filepath.Join(root, WMT16SegDir)
	writeFile(t, filepath.Join(dir, "DAseg-newstest2016.human."+pair), human)
	writeFile(t, filepath.Join(dir, "DAseg-newstest2016.reference."+pair), ref)
	writeFile(t, filepath.Join(dir, "DAseg-newstest2016.mt-system."+pair), mt)
}

func TestLoadWMT16(t *testing.T) {
	root := t.TempDir()
	writeWMT16(t, root, "de-en", "0.5\n-1.25\n", "ref one\nref two\n", "hyp one\nhyp two\n")

	got, err := LoadWMT16(root, "de-en")
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, -1.25}, got.Gold)
	assert.Equal(t, []string{"ref one", "ref two"}, got.References)
	assert.Equal(t, []string{"hyp one", "hyp two"}, got.Hypotheses)
	assert.Equal(t, 2, got.Len())
	assert.NoError(t, got.Validate())
}

func TestLoadWMT16Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadWMT16(t.TempDir(), "cs-en")
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad gold", func(t *testing.T) {
		root := t.TempDir()
		writeWMT16(t, root, "cs-en", "0.1\nabc\n", "a\nb", "a\nb")
		_, err := LoadWMT16(root, "cs-en")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gold line 2")
	})
}

func TestLoadWMT16DoesNotCheckLengths(t *testing.T) {
	root := t.TempDir()
	writeWMT16(t, root, "fi-en", "0.1\n0.2\n0.3", "a\nb", "a\nb")

	got, err := LoadWMT16(root, "fi-en")
	require.NoError(t, err)
	assert.Len(t, got.Gold, 3)
	assert.Error(t, got.Validate())
}

const aihubDoc = `{"data":[
 {"source_sentence":"s1","ht":"ref1","mt":"hyp1","score_da_final":71.5},
 {"source_sentence":"s2","ht":"ref2","mt":"hyp2","score_da_final":88}
]}`

func TestLoadAIHub(t *testing.T) {
	root := t.TempDir()
	dir := AIHubDir(root, config.SplitValidation)
	writeFile(t, filepath.Join(dir, "enko_b.json"), `{"data":[{"ht":"ref3","mt":"hyp3","score_da_final":10}]}`)
	writeFile(t, filepath.Join(dir, "enko_a.json"), aihubDoc)
	writeFile(t, filepath.Join(dir, "jako_a.json"), aihubDoc)
	writeFile(t, filepath.Join(dir, "enko_notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, "nested", "enko_c.json"), aihubDoc)

	got, err := LoadAIHub(root, "ENKO", []string{config.SplitValidation})
	require.NoError(t, err)

	assert.Equal(t, []float64{71.5, 88, 10}, got.Gold)
	assert.Equal(t, []string{"ref1", "ref2", "ref3"}, got.References)
	assert.Equal(t, []string{"hyp1", "hyp2", "hyp3"}, got.Hypotheses)
}

func TestLoadAIHubMultipleSplits(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(AIHubDir(root, config.SplitTraining), "zhko_1.json"), aihubDoc)
	writeFile(t, filepath.Join(AIHubDir(root, config.SplitValidation), "zhko_1.json"), aihubDoc)

	got, err := LoadAIHub(root, "zhko", []string{config.SplitTraining, config.SplitValidation})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Len())
}

func TestLoadAIHubErrors(t *testing.T) {
	root := t.TempDir()

	_, err := LoadAIHub(root, "enko", []string{"Test"})
	assert.ErrorIs(t, err, config.ErrUnknownSplit)

	_, err = LoadAIHub(root, "enko", []string{config.SplitValidation})
	assert.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, filepath.Join(AIHubDir(root, config.SplitValidation), "enko.json"), "{broken")
	_, err = LoadAIHub(root, "enko", []string{config.SplitValidation})
	assert.Error(t, err)
}

func TestIsAIHubPair(t *testing.T) {
	for pair, want := range map[string]bool{
		"enko":  true,
		"jako":  true,
		"zhko":  true,
		"de-en": false,
		"ENKO":  false,
	} {
		assert.Equal(t, want, IsAIHubPair(pair), pair)
	}
}

func TestLoaderDispatch(t *testing.T) {
	wmt := t.TempDir()
	aihub := t.TempDir()
	writeWMT16(t, wmt, "ro-en", "1", "r", "h")
	writeFile(t, filepath.Join(AIHubDir(aihub, config.SplitValidation), "jako_x.json"), aihubDoc)

	l := Loader{DataRoot: wmt, AIHubRoot: aihub}

	got, err := l.Load("ro-en")
	require.NoError(t, err)
	assert.Equal(t, []string{"h"}, got.Hypotheses)

	got, err = l.Load("jako")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}
