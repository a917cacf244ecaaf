// Package gitdiff implements strict diff parsing using bluekeyes/go-gitdiff.
package gitdiff

import (
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.DiffParser = (*Parser)(nil)

// Parser parses unified diff content using go-gitdiff.
//
// Unlike the lenient unidiff parser it rejects malformed input as a whole;
// in that case Parse returns an empty Diff and the caller shows the raw text.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts raw diff text into a Diff.
func (p *Parser) Parse(raw string) *nucleus.Diff {
	result := &nucleus.Diff{Files: []nucleus.DiffFile{}}

	files, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return result
	}

	c := newConverter(raw, files)
	for _, f := range files {
		fd := c.convertFile(f)
		if fd.FilePath == "" {
			continue
		}
		result.Files = append(result.Files, fd)
	}

	return result
}

// converter restores header and marker lines verbatim from the input.
// go-gitdiff only exposes them in re-rendered form, so they are collected
// from the raw text in order. When the counts disagree with what go-gitdiff
// parsed the re-rendered form is used instead.
type converter struct {
	fileHeaders []string
	hunkHeaders []string
	markers     []string

	file, hunk, marker int
}

func newConverter(raw string, files []*gitdiff.File) *converter {
	c := &converter{}
	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			c.fileHeaders = append(c.fileHeaders, line)
		case strings.HasPrefix(line, "@@ -"):
			c.hunkHeaders = append(c.hunkHeaders, line)
		case strings.HasPrefix(line, `\ `):
			c.markers = append(c.markers, line)
		}
	}

	var hunks, markers int
	for _, f := range files {
		hunks += len(f.TextFragments)
		for _, frag := range f.TextFragments {
			for _, l := range frag.Lines {
				if l.NoEOL() {
					markers++
				}
			}
		}
	}
	if len(c.fileHeaders) != len(files) {
		c.fileHeaders = nil
	}
	if len(c.hunkHeaders) != hunks {
		c.hunkHeaders = nil
	}
	if len(c.markers) != markers {
		c.markers = nil
	}
	return c
}

func (c *converter) convertFile(f *gitdiff.File) nucleus.DiffFile {
	// go-gitdiff strips a/ and b/ prefixes and empties the name on the
	// /dev/null side.
	oldName, newName := f.OldName, f.NewName
	if oldName == "" {
		oldName = newName
	}
	if newName == "" {
		newName = oldName
	}

	header := "diff --git a/" + oldName + " b/" + newName
	if c.fileHeaders != nil {
		header = c.fileHeaders[c.file]
	}
	c.file++

	fd := nucleus.DiffFile{
		Header:   header,
		FilePath: newName,
		Hunks:    make([]nucleus.DiffHunk, 0, len(f.TextFragments)),
	}

	for _, frag := range f.TextFragments {
		fd.Hunks = append(fd.Hunks, c.convertFragment(frag))
	}

	return fd
}

func (c *converter) convertFragment(frag *gitdiff.TextFragment) nucleus.DiffHunk {
	header := strings.TrimSpace(frag.Header())
	if c.hunkHeaders != nil {
		header = c.hunkHeaders[c.hunk]
	}
	c.hunk++

	hunk := nucleus.DiffHunk{
		Header: header,
		Lines:  make([]nucleus.DiffLine, 0, len(frag.Lines)),
	}

	oldLineNum := int(frag.OldPosition)
	newLineNum := int(frag.NewPosition)

	for _, l := range frag.Lines {
		content := strings.TrimSuffix(l.Line, "\n")

		switch l.Op {
		case gitdiff.OpContext:
			hunk.Lines = append(hunk.Lines, nucleus.ContextLine{
				OldLineNo: oldLineNum,
				NewLineNo: newLineNum,
				Content:   content,
			})
			oldLineNum++
			newLineNum++
		case gitdiff.OpAdd:
			hunk.Lines = append(hunk.Lines, nucleus.AddLine{NewLineNo: newLineNum, Content: content})
			newLineNum++
		case gitdiff.OpDelete:
			hunk.Lines = append(hunk.Lines, nucleus.RemoveLine{OldLineNo: oldLineNum, Content: content})
			oldLineNum++
		}

		if l.NoEOL() {
			hunk.Lines = append(hunk.Lines, nucleus.NoNewlineLine{Content: c.nextMarker()})
		}
	}

	return hunk
}

func (c *converter) nextMarker() string {
	if c.markers == nil {
		return `\ No newline at end of file`
	}
	m := c.markers[c.marker]
	c.marker++
	return m
}
