package chroma

import (
	"path/filepath"
	"strings"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Compile-time interface verification.
var _ nucleus.LanguageDetector = (*Detector)(nil)

// Detector detects languages from file paths using chroma's lexer registry.
type Detector struct{}

// NewDetector creates a new chroma-based language detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFromPath returns the lexer name for path, or "" when no lexer claims
// it. Diff-style "a/" and "b/" prefixes are ignored.
func (d *Detector) DetectFromPath(path string) string {
	path = strings.TrimPrefix(path, "a/")
	path = strings.TrimPrefix(path, "b/")

	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}
