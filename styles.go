package nucleus

// ColorPair represents a foreground and background color combination.
// Colors should be hex strings in "#RRGGBB" format (e.g., "#ff0000" for red).
// Empty strings are valid and indicate no color override (use terminal default).
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for all visual elements in a rendered diff.
type Styles struct {
	Added            ColorPair // Added lines (+)
	Removed          ColorPair // Removed lines (-)
	Context          ColorPair // Unchanged lines
	NoNewline        ColorPair // "\ No newline at end of file" markers
	HunkHeader       ColorPair // @@ ... @@
	FileHeader       ColorPair // Per-file banner
	LineNumber       ColorPair // Gutter for context lines
	AddedGutter      ColorPair // Gutter for added lines
	RemovedGutter    ColorPair // Gutter for removed lines
	AddedHighlight   ColorPair // Changed text within added lines (word-level diff)
	RemovedHighlight ColorPair // Changed text within removed lines (word-level diff)
	StatusBar        ColorPair // Bottom status line
}

// Color is a hex color string such as "#a6e3a1".
type Color string

// Palette holds the semantic colors a theme is built from. Syntax
// highlighting draws from it directly.
type Palette struct {
	Background Color
	Foreground Color

	Added    Color
	Removed  Color
	Modified Color
	Context  Color

	Keyword     Color
	String      Color
	Number      Color
	Comment     Color
	Operator    Color
	Function    Color
	Type        Color
	Constant    Color
	Punctuation Color
	Heading     Color // Markdown headings
	Link        Color // Markdown links
}

// Theme provides styles for rendering diffs.
// Different implementations can provide light/dark variants.
type Theme interface {
	Styles() Styles
	Palette() Palette
}

// Segment represents a portion of text within a line for word-level diffing.
type Segment struct {
	Text    string
	Changed bool // True if this segment differs between old/new versions
}

// WordDiffer computes word-level differences between two strings.
type WordDiffer interface {
	// Diff returns segments for both the old and new strings,
	// marking which portions changed between them.
	Diff(old, new string) (oldSegs, newSegs []Segment)
}
