package tune

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterFor(t *testing.T) {
	tests := []struct {
		logPath string
		want    string
	}{
		{"best_layers_log.txt", "best_layers_log.csv"},
		{"results/log", "results/log.csv"},
		{"log.out", "log.out.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.logPath, func(t *testing.T) {
			r := ReporterFor(tt.logPath)
			assert.Equal(t, tt.logPath, r.LogPath)
			assert.Equal(t, tt.want, r.CSVPath)
		})
	}
}

func TestReporterAppend(t *testing.T) {
	dir := t.TempDir()
	r := ReporterFor(filepath.Join(dir, "best.txt"))

	require.NoError(t, r.Append(Result{Model: "xlm-roberta-large", BestLayer: 17, BestCorr: 0.75, MaxLength: 510}))
	require.NoError(t, r.Append(Result{Model: "xlm-roberta-large", BestLayer: 0, BestCorr: 0, MaxLength: 510, IDF: true}))

	log, err := os.ReadFile(r.LogPath)
	require.NoError(t, err)
	assert.Equal(t, "xlm-roberta-large: 17, # 0.75\nxlm-roberta-large (idf): 0, # 0.0\n", string(log))

	csv, err := os.ReadFile(r.CSVPath)
	require.NoError(t, err)
	assert.Equal(t, "xlm-roberta-large,17,0.75,,510\nxlm-roberta-large,0,0.0,,510\n", string(csv))
}

func TestReporterAppendUnwritable(t *testing.T) {
	r := ReporterFor(filepath.Join(t.TempDir(), "missing", "best.txt"))
	assert.Error(t, r.Append(Result{Model: "m"}))
}

func TestFormatFloat(t *testing.T) {
	a, b := 0.1, 0.2

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-1, "-1.0"},
		{0.97, "0.97"},
		{a + b, "0.30000000000000004"},
		{1e-5, "1e-05"},
		{math.NaN(), "nan"},
		{math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFloat(tt.in))
		})
	}
}

func TestTablePath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "org_model.csv"), TablePath("out", "org/model"))
}
