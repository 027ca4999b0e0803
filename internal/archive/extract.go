package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"

	"github.com/jamesainslie/go-layertune/internal/diag"
)

// ErrUnsafePath indicates an archive entry that would land outside the
// extraction directory.
var ErrUnsafePath = errors.New("archive: entry escapes destination")

// Summary lists what ExtractAll did.
type Summary struct {
	Extracted map[Category][]string // archive names per category
	Skipped   []string              // zip files matching no category
}

// Extractor unpacks matching archives from a labeling directory.
type Extractor struct {
	Logger *slog.Logger
}

// NewExtractor returns an Extractor logging to logger (slog.Default() if nil).
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Logger: logger}
}

// ExtractAll extracts every classified .zip directly under labelingDir into
// labelingDir/<category dir>. Existing files are overwritten. A missing
// labelingDir is logged and yields an empty summary.
func (e *Extractor) ExtractAll(ctx context.Context, labelingDir string) (Summary, []diag.Failure) {
	summary := Summary{Extracted: make(map[Category][]string)}

	entries, err := os.ReadDir(labelingDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.Logger.Warn("labeling directory not found", "path", labelingDir)
			return summary, nil
		}
		return summary, []diag.Failure{{Path: labelingDir, Err: err}}
	}

	var failures []diag.Failure
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			failures = append(failures, diag.Failure{Path: labelingDir, Err: err})
			break
		}

		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".zip" {
			continue
		}

		cat := Classify(name)
		if cat == CategoryUnknown {
			summary.Skipped = append(summary.Skipped, name)
			continue
		}

		src := filepath.Join(labelingDir, name)
		dest := filepath.Join(labelingDir, cat.Dir())
		n, err := ExtractFile(src, dest)
		if err != nil {
			e.Logger.Error("extraction failed", "archive", name, "err", err)
			failures = append(failures, diag.Failure{Path: src, Err: err})
			continue
		}

		e.Logger.Info("extracted", "archive", name, "category", cat, "files", n)
		summary.Extracted[cat] = append(summary.Extracted[cat], name)
	}

	return summary, failures
}

// ExtractFile extracts every entry of the zip at src into dest, creating
// dest if needed. It returns the number of files written.
func ExtractFile(src, dest string) (int, error) {
	r, err := zip.OpenReader(src)
	// Insecure names still yield a usable reader; safeJoin rejects them per entry.
	if err != nil && (r == nil || !errors.Is(err, zip.ErrInsecurePath)) {
		return 0, fmt.Errorf("open zip: %w", err)
	}
	defer func() { _ = r.Close() }()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}

	written := 0
	for _, f := range r.File {
		name := entryName(f)
		target, err := safeJoin(dest, name)
		if err != nil {
			return written, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, fmt.Errorf("create %s: %w", name, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("create parent of %s: %w", name, err)
		}
		if err := writeEntry(f, target); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written++
	}

	return written, nil
}

func writeEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// entryName returns the entry's name as UTF-8. Archives made by Korean
// Windows tools store names in CP949 without the UTF-8 flag.
func entryName(f *zip.File) string {
	if !f.NonUTF8 || utf8.ValidString(f.Name) {
		return f.Name
	}
	decoded, err := korean.EUCKR.NewDecoder().String(f.Name)
	if err != nil {
		return f.Name
	}
	return decoded
}

// safeJoin joins an entry name onto dest, rejecting names that resolve
// outside dest.
func safeJoin(dest, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}
