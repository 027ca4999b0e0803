package corpus

import (
	"bufio"
	"fmt"
	"os"
)

// WriteSentences writes one sentence per line to path, replacing any existing
// file. Sentences are not escaped, so an embedded newline spans two lines.
func WriteSentences(path string, sentences []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, s := range sentences {
		if _, err := w.WriteString(s); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
