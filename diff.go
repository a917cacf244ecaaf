package nucleus

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// Diff is an ordered collection of file diffs, in the order the files
// appear in the raw diff text.
type Diff struct {
	Files []DiffFile `json:"files"`
}

// DiffFile represents changes to a single file.
type DiffFile struct {
	Header   string     `json:"header"`   // Raw "diff --git a/<path> b/<path>" line
	FilePath string     `json:"filePath"` // Never empty for files returned by a DiffParser
	Hunks    []DiffHunk `json:"hunks"`
}

// Stats returns the number of added and removed lines in the file.
func (f DiffFile) Stats() (added, removed int) {
	for _, hunk := range f.Hunks {
		for _, line := range hunk.Lines {
			switch line.Kind() {
			case LineAdd:
				added++
			case LineRemove:
				removed++
			}
		}
	}
	return added, removed
}

// DiffHunk represents a contiguous block of changes within a file.
type DiffHunk struct {
	Header string     `json:"header"` // Raw "@@ -a,b +c,d @@" line
	Lines  []DiffLine `json:"lines"`
}

// HunkRange holds the numeric fields of a hunk header.
type HunkRange struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(,\d+)? \+(\d+)(,\d+)? @@`)

// ParseHunkRange extracts the start and length fields from a hunk header.
// A missing ",<len>" suffix means a length of 1. When the header does not
// match, both starts default to 1 and ok is false.
func ParseHunkRange(header string) (r HunkRange, ok bool) {
	m := hunkHeaderRe.FindStringSubmatch(header)
	if m == nil {
		return HunkRange{OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1}, false
	}
	r.OldStart = atoi(m[1], 1)
	r.OldLines = atoi(trimComma(m[2]), 1)
	r.NewStart = atoi(m[3], 1)
	r.NewLines = atoi(trimComma(m[4]), 1)
	return r, true
}

func trimComma(s string) string {
	if len(s) > 0 && s[0] == ',' {
		return s[1:]
	}
	return s
}

func atoi(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// LineKind identifies which of the four line variants a DiffLine is.
type LineKind string

// Line kinds.
const (
	LineAdd       LineKind = "add"
	LineRemove    LineKind = "remove"
	LineContext   LineKind = "context"
	LineNoNewline LineKind = "no-newline"
)

// DiffLine is a single line within a hunk. It is implemented only by
// AddLine, RemoveLine, ContextLine and NoNewlineLine.
type DiffLine interface {
	Kind() LineKind
	Text() string
	// LineNumbers returns the old and new line numbers; nil means the line
	// has no number on that side.
	LineNumbers() (oldNo, newNo *int)

	diffLine()
}

// Compile-time interface verification.
var (
	_ DiffLine = AddLine{}
	_ DiffLine = RemoveLine{}
	_ DiffLine = ContextLine{}
	_ DiffLine = NoNewlineLine{}
)

// AddLine is a line present only in the new version.
type AddLine struct {
	NewLineNo int
	Content   string // Without the leading "+"
}

func (AddLine) Kind() LineKind { return LineAdd }

func (l AddLine) Text() string { return l.Content }

func (l AddLine) LineNumbers() (oldNo, newNo *int) { return nil, intPtr(l.NewLineNo) }

func (l AddLine) MarshalJSON() ([]byte, error) { return marshalLine(l) }

func (AddLine) diffLine() {}

// RemoveLine is a line present only in the old version.
type RemoveLine struct {
	OldLineNo int
	Content   string // Without the leading "-"
}

func (RemoveLine) Kind() LineKind { return LineRemove }

func (l RemoveLine) Text() string { return l.Content }

func (l RemoveLine) LineNumbers() (oldNo, newNo *int) { return intPtr(l.OldLineNo), nil }

func (l RemoveLine) MarshalJSON() ([]byte, error) { return marshalLine(l) }

func (RemoveLine) diffLine() {}

// ContextLine is a line unchanged between versions.
type ContextLine struct {
	OldLineNo int
	NewLineNo int
	Content   string // Without the single leading space, if there was one
}

func (ContextLine) Kind() LineKind { return LineContext }

func (l ContextLine) Text() string { return l.Content }

func (l ContextLine) LineNumbers() (oldNo, newNo *int) {
	return intPtr(l.OldLineNo), intPtr(l.NewLineNo)
}

func (l ContextLine) MarshalJSON() ([]byte, error) { return marshalLine(l) }

func (ContextLine) diffLine() {}

// NoNewlineLine is the "\ No newline at end of file" marker. It carries the
// raw marker text and no line numbers.
type NoNewlineLine struct {
	Content string
}

func (NoNewlineLine) Kind() LineKind { return LineNoNewline }

func (l NoNewlineLine) Text() string { return l.Content }

func (NoNewlineLine) LineNumbers() (oldNo, newNo *int) { return nil, nil }

func (l NoNewlineLine) MarshalJSON() ([]byte, error) { return marshalLine(l) }

func (NoNewlineLine) diffLine() {}

func intPtr(n int) *int { return &n }

// lineJSON is the wire shape shared by all line variants.
type lineJSON struct {
	Type      LineKind `json:"type"`
	Content   string   `json:"content"`
	OldLineNo *int     `json:"oldLineNo"`
	NewLineNo *int     `json:"newLineNo"`
}

func marshalLine(l DiffLine) ([]byte, error) {
	oldNo, newNo := l.LineNumbers()
	return json.Marshal(lineJSON{
		Type:      l.Kind(),
		Content:   l.Text(),
		OldLineNo: oldNo,
		NewLineNo: newNo,
	})
}
