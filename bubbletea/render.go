package bubbletea

import (
	"fmt"
	"strings"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/charmbracelet/lipgloss"
)

// renderConfig holds all rendering parameters for renderDiff.
type renderConfig struct {
	diff             *nucleus.Diff
	styles           nucleus.Styles
	renderer         *lipgloss.Renderer
	width            int
	languageDetector nucleus.LanguageDetector
	tokenizer        nucleus.Tokenizer
	wordDiffer       nucleus.WordDiffer
}

// minGutterWidth is the minimum width of each line number column in the gutter.
const minGutterWidth = 4

// minUnchangedShare is the share of unchanged text a removed/added pair needs
// before word-level highlighting is used instead of whole-line coloring.
const minUnchangedShare = 0.30

// lineStyles are the lipgloss styles derived from a nucleus.Styles.
type lineStyles struct {
	fileHeader       lipgloss.Style
	hunkHeader       lipgloss.Style
	added            lipgloss.Style
	removed          lipgloss.Style
	context          lipgloss.Style
	noNewline        lipgloss.Style
	lineNumber       lipgloss.Style
	addedGutter      lipgloss.Style
	removedGutter    lipgloss.Style
	addedHighlight   lipgloss.Style
	removedHighlight lipgloss.Style
	statusBar        lipgloss.Style
}

func newLineStyles(s nucleus.Styles, r *lipgloss.Renderer) lineStyles {
	return lineStyles{
		fileHeader:       styleFromColorPair(s.FileHeader, r).Bold(true),
		hunkHeader:       styleFromColorPair(s.HunkHeader, r),
		added:            styleFromColorPair(s.Added, r),
		removed:          styleFromColorPair(s.Removed, r),
		context:          styleFromColorPair(s.Context, r),
		noNewline:        styleFromColorPair(s.NoNewline, r).Italic(true),
		lineNumber:       styleFromColorPair(s.LineNumber, r),
		addedGutter:      styleFromColorPair(s.AddedGutter, r),
		removedGutter:    styleFromColorPair(s.RemovedGutter, r),
		addedHighlight:   styleFromColorPair(s.AddedHighlight, r),
		removedHighlight: styleFromColorPair(s.RemovedHighlight, r),
		statusBar:        styleFromColorPair(s.StatusBar, r),
	}
}

// renderDiff converts a Diff to a styled string, one output line per file
// header, hunk header and diff line, so computeLayout can map rows back to
// files and hunks.
func renderDiff(cfg renderConfig) string {
	if cfg.diff == nil {
		return ""
	}

	st := newLineStyles(cfg.styles, cfg.renderer)
	gutterWidth := calculateGutterWidth(cfg.diff)
	// Gutter columns, the two separating spaces and the padding before the prefix.
	lineWidth := cfg.width - (2*gutterWidth + 3)

	var sb strings.Builder
	for _, file := range cfg.diff.Files {
		var language string
		if cfg.languageDetector != nil {
			language = cfg.languageDetector.DetectFromPath(file.FilePath)
		}

		sb.WriteString(st.fileHeader.Render(fileHeaderLine(file, cfg.width)))
		sb.WriteString("\n")

		if len(file.Hunks) == 0 {
			sb.WriteString(st.context.Render("(no content changes)"))
			sb.WriteString("\n")
			continue
		}

		for _, hunk := range file.Hunks {
			sb.WriteString(st.hunkHeader.Render(hunk.Header))
			sb.WriteString("\n")

			segments := computeLinePairSegments(hunk.Lines, cfg.wordDiffer)
			for i, line := range hunk.Lines {
				sb.WriteString(renderLine(line, segments[i], language, gutterWidth, lineWidth, cfg, st))
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// fileHeaderLine builds "── path ──────── +N -M ──" filling width.
func fileHeaderLine(file nucleus.DiffFile, width int) string {
	added, removed := file.Stats()
	left := "── " + file.FilePath + " "
	right := fmt.Sprintf(" +%d -%d ──", added, removed)

	fill := width - lipgloss.Width(left) - lipgloss.Width(right)
	if fill < 3 {
		fill = 3
	}
	return left + strings.Repeat("─", fill) + right
}

func renderLine(line nucleus.DiffLine, segments []nucleus.Segment, language string, gutterWidth, lineWidth int, cfg renderConfig, st lineStyles) string {
	oldNo, newNo := line.LineNumbers()

	var (
		gutter, base, highlight lipgloss.Style
		colors                  nucleus.ColorPair
		prefix                  string
		fill                    = true
	)
	switch line.Kind() {
	case nucleus.LineAdd:
		gutter, base, highlight, colors, prefix = st.addedGutter, st.added, st.addedHighlight, cfg.styles.Added, "+"
	case nucleus.LineRemove:
		gutter, base, highlight, colors, prefix = st.removedGutter, st.removed, st.removedHighlight, cfg.styles.Removed, "-"
	case nucleus.LineNoNewline:
		return formatGutter(nil, nil, gutterWidth, st.lineNumber) + st.noNewline.Render(" "+line.Text())
	default:
		gutter, base, colors, prefix, fill = st.lineNumber, st.context, cfg.styles.Context, " ", false
	}

	var sb strings.Builder
	sb.WriteString(formatGutter(oldNo, newNo, gutterWidth, gutter))
	sb.WriteString(base.Render(" "))

	if segments != nil {
		sb.WriteString(renderLineWithSegments(prefix, segments, base, highlight, lineWidth))
		return sb.String()
	}

	content := ExpandTabs(line.Text(), 0)
	var tokens []nucleus.Token
	if cfg.tokenizer != nil && language != "" {
		tokens = cfg.tokenizer.Tokenize(language, content)
	}
	switch {
	case tokens != nil:
		sb.WriteString(renderLineWithTokens(prefix, tokens, colors, cfg.renderer, lineWidth))
	case fill:
		sb.WriteString(base.Render(padLine(prefix+content, lineWidth)))
	default:
		sb.WriteString(base.Render(prefix + content))
	}
	return sb.String()
}

// computeLinePairSegments pairs runs of removed lines with the run of added
// lines that directly follows them, 1:1 in order, and word-diffs each pair.
// The result maps a line index to its segments; unpaired lines and pairs with
// too little in common have no entry.
func computeLinePairSegments(lines []nucleus.DiffLine, wordDiffer nucleus.WordDiffer) map[int][]nucleus.Segment {
	if wordDiffer == nil {
		return nil
	}

	result := make(map[int][]nucleus.Segment)
	for i := 0; i < len(lines); i++ {
		if lines[i].Kind() != nucleus.LineRemove {
			continue
		}

		removeStart := i
		removeEnd := runEnd(lines, i, nucleus.LineRemove)
		addEnd := runEnd(lines, removeEnd, nucleus.LineAdd)
		i = addEnd - 1

		pairs := min(removeEnd-removeStart, addEnd-removeEnd)
		for j := 0; j < pairs; j++ {
			oldIdx, newIdx := removeStart+j, removeEnd+j
			oldSegs, newSegs := wordDiffer.Diff(
				ExpandTabs(lines[oldIdx].Text(), 0),
				ExpandTabs(lines[newIdx].Text(), 0),
			)
			if unchangedShare(oldSegs) >= minUnchangedShare && unchangedShare(newSegs) >= minUnchangedShare {
				result[oldIdx] = oldSegs
				result[newIdx] = newSegs
			}
		}
	}
	return result
}

// runEnd returns the index just past the run of kind starting at i.
func runEnd(lines []nucleus.DiffLine, i int, kind nucleus.LineKind) int {
	for i < len(lines) && lines[i].Kind() == kind {
		i++
	}
	return i
}

func unchangedShare(segments []nucleus.Segment) float64 {
	var unchanged, total int
	for _, seg := range segments {
		total += len(seg.Text)
		if !seg.Changed {
			unchanged += len(seg.Text)
		}
	}
	if total == 0 {
		return 0
	}
	return float64(unchanged) / float64(total)
}

// renderLineWithSegments renders a line with word-level highlighting and pads
// it with the base style to width.
func renderLineWithSegments(prefix string, segments []nucleus.Segment, base, highlight lipgloss.Style, width int) string {
	var sb strings.Builder
	sb.WriteString(base.Render(prefix))

	used := lipgloss.Width(prefix)
	for _, seg := range segments {
		if seg.Changed {
			sb.WriteString(highlight.Render(seg.Text))
		} else {
			sb.WriteString(base.Render(seg.Text))
		}
		used += lipgloss.Width(seg.Text)
	}
	if used < width {
		sb.WriteString(base.Render(strings.Repeat(" ", width-used)))
	}
	return sb.String()
}

// renderLineWithTokens renders a syntax-highlighted line: each token keeps
// its syntax foreground over the diff background.
func renderLineWithTokens(prefix string, tokens []nucleus.Token, colors nucleus.ColorPair, renderer *lipgloss.Renderer, width int) string {
	base := styleFromColorPair(colors, renderer)

	var sb strings.Builder
	sb.WriteString(base.Render(prefix))

	used := lipgloss.Width(prefix)
	for _, tok := range tokens {
		style := newStyle(renderer)
		if colors.Background != "" {
			style = style.Background(lipgloss.Color(colors.Background))
		}
		switch {
		case tok.Style.Foreground != "":
			style = style.Foreground(lipgloss.Color(tok.Style.Foreground))
		case colors.Foreground != "":
			style = style.Foreground(lipgloss.Color(colors.Foreground))
		}
		if tok.Style.Bold {
			style = style.Bold(true)
		}
		if tok.Style.Italic {
			style = style.Italic(true)
		}
		sb.WriteString(style.Render(tok.Text))
		used += lipgloss.Width(tok.Text)
	}

	if colors.Background != "" && used < width {
		sb.WriteString(base.Render(strings.Repeat(" ", width-used)))
	}
	return sb.String()
}

// renderRaw colors unparsed diff text line by line from its prefixes. It is
// shown when the parser finds no files in non-empty input.
func renderRaw(raw string, st lineStyles) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(raw, "\n"), "\n") {
		line = ExpandTabs(line, 0)
		switch {
		case strings.HasPrefix(line, "diff "), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			sb.WriteString(st.fileHeader.Render(line))
		case strings.HasPrefix(line, "@@"):
			sb.WriteString(st.hunkHeader.Render(line))
		case strings.HasPrefix(line, "+"):
			sb.WriteString(st.added.Render(line))
		case strings.HasPrefix(line, "-"):
			sb.WriteString(st.removed.Render(line))
		case strings.HasPrefix(line, `\`):
			sb.WriteString(st.noNewline.Render(line))
		default:
			sb.WriteString(st.context.Render(line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// calculateGutterWidth sizes the line number columns for the largest number
// in the diff.
func calculateGutterWidth(diff *nucleus.Diff) int {
	maxLineNo := 0
	for _, file := range diff.Files {
		for _, hunk := range file.Hunks {
			for _, line := range hunk.Lines {
				oldNo, newNo := line.LineNumbers()
				if oldNo != nil && *oldNo > maxLineNo {
					maxLineNo = *oldNo
				}
				if newNo != nil && *newNo > maxLineNo {
					maxLineNo = *newNo
				}
			}
		}
	}
	return max(digitWidth(maxLineNo), minGutterWidth)
}

// formatGutter formats the old and new line number columns; a nil number is
// left blank.
func formatGutter(oldNo, newNo *int, width int, style lipgloss.Style) string {
	return style.Render(fmt.Sprintf("%s %s ", formatLineNo(oldNo, width), formatLineNo(newNo, width)))
}

func formatLineNo(n *int, width int) string {
	if n == nil {
		return strings.Repeat(" ", width)
	}
	return fmt.Sprintf("%*d", width, *n)
}

func newStyle(r *lipgloss.Renderer) lipgloss.Style {
	if r != nil {
		return r.NewStyle()
	}
	return lipgloss.NewStyle()
}

// styleFromColorPair creates a lipgloss style from a ColorPair.
// If r is nil, the default lipgloss renderer is used.
func styleFromColorPair(cp nucleus.ColorPair, r *lipgloss.Renderer) lipgloss.Style {
	style := newStyle(r)
	if cp.Foreground != "" {
		style = style.Foreground(lipgloss.Color(cp.Foreground))
	}
	if cp.Background != "" {
		style = style.Background(lipgloss.Color(cp.Background))
	}
	return style
}

// padLine pads line with spaces to the given display width.
func padLine(line string, width int) string {
	w := lipgloss.Width(line)
	if w >= width {
		return line
	}
	return line + strings.Repeat(" ", width-w)
}

func digitWidth(n int) int {
	if n <= 0 {
		return 1
	}
	width := 0
	for n > 0 {
		width++
		n /= 10
	}
	return width
}

// hunkRef locates a rendered hunk.
type hunkRef struct {
	row  int // Row of the hunk header in the rendered content
	file int
	hunk int
}

// layout records the rendered rows of every file header and hunk header.
type layout struct {
	files []int
	hunks []hunkRef
}

// computeLayout mirrors renderDiff's row accounting. It is independent of
// the terminal width.
func computeLayout(diff *nucleus.Diff) layout {
	var l layout
	if diff == nil {
		return l
	}

	row := 0
	for fi, file := range diff.Files {
		l.files = append(l.files, row)
		row++

		if len(file.Hunks) == 0 {
			row++
			continue
		}
		for hi, hunk := range file.Hunks {
			l.hunks = append(l.hunks, hunkRef{row: row, file: fi, hunk: hi})
			row += 1 + len(hunk.Lines)
		}
	}
	return l
}

// hunkText reconstructs the unified diff text of a hunk.
func hunkText(h nucleus.DiffHunk) string {
	var sb strings.Builder
	sb.WriteString(h.Header)
	sb.WriteString("\n")
	for _, line := range h.Lines {
		switch line.Kind() {
		case nucleus.LineAdd:
			sb.WriteString("+")
		case nucleus.LineRemove:
			sb.WriteString("-")
		case nucleus.LineContext:
			sb.WriteString(" ")
		}
		sb.WriteString(line.Text())
		sb.WriteString("\n")
	}
	return sb.String()
}
