package nucleus

// Token represents a syntax-highlighted segment of a line.
type Token struct {
	Text  string
	Style Style
}

// Style represents the visual styling for a token.
type Style struct {
	Foreground string // Hex color code (e.g., "#ff0000") or empty for default
	Bold       bool
	Italic     bool
}

// Tokenizer extracts syntax tokens from source text.
type Tokenizer interface {
	// Tokenize splits source into syntax-highlighted tokens for the given language.
	// Returns nil if the language is not supported.
	Tokenize(language, source string) []Token
}

// LanguageDetector determines the language of a file from its path.
type LanguageDetector interface {
	// DetectFromPath returns the language name for the given path,
	// or an empty string if the language cannot be determined.
	DetectFromPath(path string) string
}
