// Package unidiff implements a lenient unified diff parser.
//
// The parser is a single left-to-right scan driven by line prefixes. It never
// fails: malformed headers fall back to line number 1 and file blocks whose
// path cannot be resolved are dropped.
package unidiff

import (
	"regexp"
	"strings"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.DiffParser = (*Parser)(nil)

// Line prefixes that drive state transitions.
const (
	prefixFileHeader = "diff --git"
	prefixHunkHeader = "@@"
	prefixOldPath    = "--- "
	prefixNewPath    = "+++ "
	prefixBinary     = "Binary "
	prefixNoNewline  = `\`
)

var (
	fileHeaderRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	newPathRe    = regexp.MustCompile(`^\+\+\+ b/(.+)$`)
)

// state is a position in the scan.
type state int

const (
	seekFileHeader state = iota // before the first "diff --git"
	skipMetadata                // mode, index, rename and similarity lines
	expectOldPath               // a "--- " line may follow
	expectNewPath               // a "+++ " line may follow
	inHunkHeader                // waiting for "@@"
	inHunkBody                  // classifying body lines
)

func (s state) String() string {
	switch s {
	case seekFileHeader:
		return "SeekFileHeader"
	case skipMetadata:
		return "SkipMetadata"
	case expectOldPath:
		return "ExpectOldPath"
	case expectNewPath:
		return "ExpectNewPath"
	case inHunkHeader:
		return "InHunkHeader"
	case inHunkBody:
		return "InHunkBody"
	default:
		return "Unknown"
	}
}

// Parser parses unified diff text. The zero value is ready to use and safe
// for concurrent use; all parse state is local to each call.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts raw diff text into a Diff.
func (p *Parser) Parse(raw string) *nucleus.Diff {
	return Parse(raw)
}

// Parse converts raw diff text into a Diff. See Parser.
func Parse(raw string) *nucleus.Diff {
	s := &scanner{diff: &nucleus.Diff{Files: []nucleus.DiffFile{}}}
	for _, line := range splitLines(raw) {
		s.feed(line)
	}
	s.finishFile()
	return s.diff
}

// splitLines splits text into lines. A single terminating newline does not
// produce a trailing empty line.
func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = strings.TrimSuffix(raw, "\n")
	return strings.Split(raw, "\n")
}

// scanner holds the state of one Parse call.
type scanner struct {
	state state
	diff  *nucleus.Diff

	file *nucleus.DiffFile
	hunk *nucleus.DiffHunk

	oldLine int
	newLine int
}

// feed dispatches a line to the current state. Some states hand the line on
// to the next state without consuming it, so dispatch loops until a state
// consumes the line.
func (s *scanner) feed(line string) {
	for !s.step(line) {
	}
}

// step handles line in the current state and reports whether it was consumed.
func (s *scanner) step(line string) bool {
	// A file header ends whatever came before, in every state.
	if strings.HasPrefix(line, prefixFileHeader) {
		s.finishFile()
		s.startFile(line)
		s.state = skipMetadata
		return true
	}

	switch s.state {
	case seekFileHeader:
		return true

	case skipMetadata:
		if strings.HasPrefix(line, prefixHunkHeader) ||
			strings.HasPrefix(line, prefixOldPath) ||
			strings.HasPrefix(line, prefixNewPath) ||
			strings.HasPrefix(line, prefixBinary) {
			s.state = expectOldPath
			return false
		}
		return true

	case expectOldPath:
		s.state = expectNewPath
		// The old path is positional only; nothing is extracted from it.
		return strings.HasPrefix(line, prefixOldPath)

	case expectNewPath:
		s.state = inHunkHeader
		if !strings.HasPrefix(line, prefixNewPath) {
			return false
		}
		if m := newPathRe.FindStringSubmatch(line); m != nil {
			s.file.FilePath = m[1]
		}
		return true

	case inHunkHeader:
		if strings.HasPrefix(line, prefixHunkHeader) {
			s.startHunk(line)
			s.state = inHunkBody
		}
		return true

	case inHunkBody:
		if strings.HasPrefix(line, prefixHunkHeader) {
			s.finishHunk()
			s.startHunk(line)
			return true
		}
		s.appendLine(line)
		return true
	}

	return true
}

func (s *scanner) startFile(header string) {
	s.file = &nucleus.DiffFile{Header: header, Hunks: []nucleus.DiffHunk{}}
	if m := fileHeaderRe.FindStringSubmatch(header); m != nil {
		s.file.FilePath = m[2]
	}
}

// finishFile appends the current file to the result if its path resolved.
func (s *scanner) finishFile() {
	s.finishHunk()
	if s.file == nil {
		return
	}
	if s.file.FilePath != "" {
		s.diff.Files = append(s.diff.Files, *s.file)
	}
	s.file = nil
	s.state = seekFileHeader
}

func (s *scanner) startHunk(header string) {
	r, _ := nucleus.ParseHunkRange(header)
	s.hunk = &nucleus.DiffHunk{Header: header, Lines: []nucleus.DiffLine{}}
	s.oldLine = r.OldStart
	s.newLine = r.NewStart
}

func (s *scanner) finishHunk() {
	if s.hunk == nil {
		return
	}
	s.file.Hunks = append(s.file.Hunks, *s.hunk)
	s.hunk = nil
}

// appendLine classifies a hunk body line and advances the line counters.
func (s *scanner) appendLine(line string) {
	var l nucleus.DiffLine
	switch {
	case strings.HasPrefix(line, "+"):
		l = nucleus.AddLine{NewLineNo: s.newLine, Content: line[1:]}
		s.newLine++
	case strings.HasPrefix(line, "-"):
		l = nucleus.RemoveLine{OldLineNo: s.oldLine, Content: line[1:]}
		s.oldLine++
	case strings.HasPrefix(line, prefixNoNewline):
		l = nucleus.NoNewlineLine{Content: line}
	default:
		l = nucleus.ContextLine{
			OldLineNo: s.oldLine,
			NewLineNo: s.newLine,
			Content:   strings.TrimPrefix(line, " "),
		}
		s.oldLine++
		s.newLine++
	}
	s.hunk.Lines = append(s.hunk.Lines, l)
}
