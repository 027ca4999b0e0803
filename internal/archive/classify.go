// Package archive classifies and unpacks AIHub translation-quality archives.
package archive

import (
	"path/filepath"
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// Category is the kind of dataset an archive holds.
type Category int

const (
	CategoryUnknown Category = iota
	// CategoryMTPE holds machine-translation post-editing evaluations
	// for a language paired with Korean.
	CategoryMTPE
	// CategoryHT holds the Korean human-translation corpus.
	CategoryHT
)

var (
	mtpePattern = regexp.MustCompile(`평가데이터\(MTPE\)_[^-]+-한`)
	htPattern   = regexp.MustCompile(`번역말뭉치\(HT\)_한`)
)

// Classify maps an archive file name to its category. Only the base name is
// inspected, after NFC normalization so decomposed Hangul still matches.
func Classify(name string) Category {
	base := norm.NFC.String(filepath.Base(name))
	switch {
	case mtpePattern.MatchString(base):
		return CategoryMTPE
	case htPattern.MatchString(base):
		return CategoryHT
	default:
		return CategoryUnknown
	}
}

func (c Category) String() string {
	switch c {
	case CategoryMTPE:
		return "MTPE"
	case CategoryHT:
		return "HT"
	default:
		return "unknown"
	}
}

// Dir is the extraction directory name for the category, relative to the
// labeling directory. It is empty for CategoryUnknown.
func (c Category) Dir() string {
	switch c {
	case CategoryMTPE:
		return "extracted"
	case CategoryHT:
		return "extracted_ht"
	default:
		return ""
	}
}
