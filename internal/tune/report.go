package tune

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Reporter appends best-layer results to a text log and its CSV companion.
type Reporter struct {
	LogPath string
	CSVPath string
}

// ReporterFor derives the CSV path from logPath: a ".txt" suffix becomes
// ".csv", anything else gets ".csv" appended.
func ReporterFor(logPath string) *Reporter {
	csvPath := logPath + ".csv"
	if base, ok := strings.CutSuffix(logPath, ".txt"); ok {
		csvPath = base + ".csv"
	}
	return &Reporter{LogPath: logPath, CSVPath: csvPath}
}

// Line formats the log line for res.
func (r *Reporter) Line(res Result) string {
	name := res.Model
	if res.IDF {
		name += " (idf)"
	}
	return fmt.Sprintf("%s: %d, # %s", name, res.BestLayer, formatFloat(res.BestCorr))
}

// Append writes one line to the log and one record to the CSV. Both files
// are opened in append mode and created when absent.
func (r *Reporter) Append(res Result) error {
	if err := appendTo(r.LogPath, func(f *os.File) error {
		_, err := fmt.Fprintln(f, r.Line(res))
		return err
	}); err != nil {
		return err
	}

	return appendTo(r.CSVPath, func(f *os.File) error {
		w := csv.NewWriter(f)
		record := []string{
			res.Model,
			strconv.Itoa(res.BestLayer),
			formatFloat(res.BestCorr),
			"",
			strconv.Itoa(res.MaxLength),
		}
		if err := w.Write(record); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	})
}

func appendTo(path string, fn func(*os.File) error) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := fn(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// TablePath returns <dir>/<model>.csv with path separators in the model
// name replaced.
func TablePath(dir, model string) string {
	name := strings.NewReplacer("/", "_", `\`, "_", ":", "_").Replace(model)
	return filepath.Join(dir, name+".csv")
}

// formatFloat renders v with the shortest round-trip digits, always keeping a
// fraction or an exponent: 1 becomes "1.0", 0.00001 becomes "1e-05".
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
