package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const sentencePieceSpace = '▁' // U+2581 LOWER ONE EIGHTH BLOCK

// normalize prepares text for tokenization following XLM-RoBERTa conventions.
// - Applies NFKC (the nmt_nfkc rule without its control-char table)
// - Adds dummy prefix (space at start)
// - Replaces spaces with ▁
// - Normalizes whitespace (collapses runs, trims trailing)
func normalize(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFKC.String(text)

	var builder strings.Builder
	needSpace := true // start true to add dummy prefix before first non-space
	for _, r := range text {
		if unicode.IsSpace(r) {
			if builder.Len() > 0 {
				needSpace = true
			}
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if needSpace {
			builder.WriteRune(sentencePieceSpace)
			needSpace = false
		}
		builder.WriteRune(r)
	}

	return builder.String()
}
